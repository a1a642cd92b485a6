// Package ai lets an operator ask for reports in plain language through Gemini.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-pos-report/internal/report"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	toolDailyReport = "generate_daily_report"
	maxToolRounds   = 4
	fallbackReply   = "I completed the action."
)

// ReportGenerator runs the daily report pipeline.
type ReportGenerator interface {
	Generate(ctx context.Context, req report.Request, id report.Identity) (report.Result, error)
}

// chatSession is the part of *genai.ChatSession the agent drives.
type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Agent struct {
	apiKey  string
	model   string
	reports ReportGenerator
	loc     *time.Location
	logger  *zap.Logger
	now     func() time.Time
}

func NewAgent(apiKey, model string, reports ReportGenerator, loc *time.Location, logger *zap.Logger) *Agent {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{apiKey: apiKey, model: model, reports: reports, loc: loc, logger: logger, now: time.Now}
}

// Ask answers message on behalf of id. Reports are generated with id's own
// permissions, so the assistant cannot do anything the caller could not.
func (a *Agent) Ask(ctx context.Context, message string, id report.Identity) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(a.apiKey))
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(a.model)
	model.SystemInstruction = genai.NewUserContent(genai.Text(a.systemPrompt()))
	model.Tools = tools()

	return a.converse(ctx, model.StartChat(), message, id)
}

func (a *Agent) systemPrompt() string {
	today := a.now().In(a.loc).Format(report.DateLayout)
	return fmt.Sprintf(`Today is %s. You are the reporting assistant of a cafe point-of-sale system.

RULES:
1. If the user asks for a daily sales report (or a PDF, summary or best sellers of a day), call '%s' with that day as YYYY-MM-DD. Resolve words like "today" or "yesterday" against today's date.
2. When the tool returns a url, give the user that exact link. When it returns a message, repeat it.
3. When the tool returns an error, tell the user what went wrong in one sentence. Never invent numbers or links.`, today, toolDailyReport)
}

func tools() []*genai.Tool {
	return []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{{
			Name:        toolDailyReport,
			Description: "Generate the PDF sales report of one calendar day and return a download link, or a message when the day had no orders.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"date": {Type: genai.TypeString, Description: "Report day (YYYY-MM-DD)"},
				},
				Required: []string{"date"},
			},
		}},
	}}
}

func (a *Agent) converse(ctx context.Context, chat chatSession, message string, id report.Identity) (string, error) {
	resp, err := chat.SendMessage(ctx, genai.Text(message))
	for round := 0; ; round++ {
		if err != nil {
			return "", fmt.Errorf("gemini request: %w", err)
		}
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return replyText(resp), nil
		}
		if round == maxToolRounds {
			return "", errors.New("assistant exceeded the tool call limit")
		}

		parts := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			parts = append(parts, a.callTool(ctx, call, id))
		}
		resp, err = chat.SendMessage(ctx, parts...)
	}
}

func (a *Agent) callTool(ctx context.Context, call genai.FunctionCall, id report.Identity) genai.FunctionResponse {
	out := genai.FunctionResponse{Name: call.Name}
	if call.Name != toolDailyReport {
		out.Response = map[string]any{"error": fmt.Sprintf("unknown tool %q", call.Name)}
		return out
	}

	date, _ := call.Args["date"].(string)
	a.logger.Info("assistant tool call", zap.String("tool", call.Name), zap.String("date", date), zap.String("subject", id.Subject))

	res, err := a.reports.Generate(ctx, report.Request{Date: strings.TrimSpace(date)}, id)
	switch {
	case err != nil:
		kind, msg := report.Public(err)
		out.Response = map[string]any{"error": msg, "code": string(kind)}
	case res.HasLink():
		out.Response = map[string]any{"url": res.URL}
	default:
		out.Response = map[string]any{"message": res.Message}
	}
	return out
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	var calls []genai.FunctionCall
	for _, part := range firstParts(resp) {
		if fc, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, fc)
		}
	}
	return calls
}

func replyText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, part := range firstParts(resp) {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return fallbackReply
	}
	return sb.String()
}

func firstParts(resp *genai.GenerateContentResponse) []genai.Part {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	return resp.Candidates[0].Content.Parts
}
