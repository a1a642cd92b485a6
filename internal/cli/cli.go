// Package cli implements reportctl, which runs the report pipeline and mints
// operator tokens without going through the HTTP server.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go-pos-report/internal/app"
	"go-pos-report/internal/auth"
	"go-pos-report/internal/config"
	"go-pos-report/internal/logger"
	"go-pos-report/internal/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ReportGenerator runs the daily report pipeline.
type ReportGenerator interface {
	Generate(ctx context.Context, req report.Request, id report.Identity) (report.Result, error)
}

// Options contain configuration for the CLI
type Options struct {
	Output     io.Writer
	LoadConfig func() (*config.Config, error)

	// OpenReports builds the pipeline; the returned function releases it.
	OpenReports func(ctx context.Context, cfg *config.Config, log *zap.Logger) (ReportGenerator, func() error, error)
}

// CLI represents the command-line interface
type CLI struct {
	opts    Options
	rootCmd *cobra.Command
}

func New(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LoadConfig == nil {
		opts.LoadConfig = config.Load
	}
	if opts.OpenReports == nil {
		opts.OpenReports = openApp
	}
	c := &CLI{opts: opts}
	c.rootCmd = c.newRootCmd()
	return c
}

func (c *CLI) Execute(ctx context.Context, args []string) error {
	c.rootCmd.SetArgs(args)
	return c.rootCmd.ExecuteContext(ctx)
}

func openApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (ReportGenerator, func() error, error) {
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return a.Reports, a.Close, nil
}

func (c *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "reportctl",
		Short:         "Daily sales report tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(c.opts.Output)
	cmd.AddCommand(c.newDailyCmd(), c.newTokenCmd())
	return cmd
}

func (c *CLI) newDailyCmd() *cobra.Command {
	var date, role, subject string

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Generate the PDF report of one day and print its download link",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.opts.LoadConfig()
			if err != nil {
				return err
			}
			logCfg := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: "stderr"}
			log, err := logger.New(logger.ForEnv(cfg.App.Env, logCfg))
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			if role == "" {
				role = cfg.Report.PrivilegedRole
			}
			reports, closeFn, err := c.opts.OpenReports(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer closeFn() //nolint:errcheck

			id := report.Identity{Authenticated: true, Subject: subject, Role: role}
			res, err := reports.Generate(cmd.Context(), report.Request{Date: date}, id)
			if err != nil {
				kind, msg := report.Public(err)
				return fmt.Errorf("%s: %s", kind, msg)
			}

			out := cmd.OutOrStdout()
			if !res.HasLink() {
				fmt.Fprintln(out, res.Message)
				return nil
			}
			fmt.Fprintln(out, res.URL)
			fmt.Fprintf(out, "expires: %s\n", res.Expiry.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", time.Now().Format(report.DateLayout), "report day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&role, "role", "", "role to run as (default: the privileged role)")
	cmd.Flags().StringVar(&subject, "subject", "reportctl", "subject recorded in the logs")
	return cmd
}

func (c *CLI) newTokenCmd() *cobra.Command {
	var (
		userID uint
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for an operator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.opts.LoadConfig()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.JWT.Expiration
			}
			tokens, err := auth.NewTokenManager(cfg.JWT.Secret, ttl)
			if err != nil {
				return err
			}
			if role == "" {
				role = cfg.Report.PrivilegedRole
			}
			token, err := tokens.GenerateToken(userID, role)
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().UintVar(&userID, "user-id", 0, "user ID placed in the token")
	cmd.Flags().StringVar(&role, "role", "", "role claim (default: the privileged role)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default: jwt.expiration)")
	return cmd
}
