package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go-pos-report/internal/auth"
	"go-pos-report/internal/config"
	"go-pos-report/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReports struct {
	req report.Request
	id  report.Identity
	res report.Result
	err error
}

func (f *fakeReports) Generate(_ context.Context, req report.Request, id report.Identity) (report.Result, error) {
	f.req, f.id = req, id
	return f.res, f.err
}

func testConfig() (*config.Config, error) {
	return &config.Config{
		JWT:    config.JWTConfig{Secret: "test-secret", Expiration: time.Hour},
		Log:    config.LogConfig{Level: "error"},
		Report: config.ReportConfig{PrivilegedRole: "yonetici"},
	}, nil
}

func newCLI(out *bytes.Buffer, reports *fakeReports) *CLI {
	return New(Options{
		Output:     out,
		LoadConfig: testConfig,
		OpenReports: func(context.Context, *config.Config, *zap.Logger) (ReportGenerator, func() error, error) {
			return reports, func() error { return nil }, nil
		},
	})
}

func TestDaily(t *testing.T) {
	t.Run("prints link", func(t *testing.T) {
		var out bytes.Buffer
		reports := &fakeReports{res: report.Result{
			URL:    "http://localhost:8080/files/reports/2025-07-28_report.pdf?token=x",
			Expiry: time.Date(2491, 3, 9, 0, 0, 0, 0, time.UTC),
		}}

		err := newCLI(&out, reports).Execute(context.Background(), []string{"daily", "--date", "2025-07-28"})

		require.NoError(t, err)
		assert.Equal(t, "2025-07-28", reports.req.Date)
		assert.Equal(t, "yonetici", reports.id.Role)
		assert.True(t, reports.id.Authenticated)
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		assert.Equal(t, []string{
			"http://localhost:8080/files/reports/2025-07-28_report.pdf?token=x",
			"expires: 2491-03-09T00:00:00Z",
		}, lines)
	})

	t.Run("prints no data message", func(t *testing.T) {
		var out bytes.Buffer
		reports := &fakeReports{res: report.Result{Message: report.NoDataMessage}}

		err := newCLI(&out, reports).Execute(context.Background(), []string{"daily", "--date", "2025-07-27", "--role", "barista"})

		require.NoError(t, err)
		assert.Equal(t, "barista", reports.id.Role)
		assert.Equal(t, report.NoDataMessage+"\n", out.String())
	})

	t.Run("hides internal failure", func(t *testing.T) {
		var out bytes.Buffer
		reports := &fakeReports{err: &report.Error{Kind: report.KindQueryFailure, Stage: report.StageQuerying, Err: errors.New("dial tcp 10.0.0.5:3306")}}

		err := newCLI(&out, reports).Execute(context.Background(), []string{"daily"})

		require.Error(t, err)
		assert.Equal(t, "internal: "+report.InternalMessage, err.Error())
	})
}

func TestToken(t *testing.T) {
	var out bytes.Buffer

	err := newCLI(&out, &fakeReports{}).Execute(context.Background(), []string{"token", "--user-id", "4"})
	require.NoError(t, err)

	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	claims, err := tokens.ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, uint(4), claims.UserID)
	assert.Equal(t, "yonetici", claims.Role)
}
