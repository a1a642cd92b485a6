package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go-pos-report/internal/auth"
	"go-pos-report/internal/config"
	"go-pos-report/internal/pdf"
	"go-pos-report/internal/report"
	"go-pos-report/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type daySales map[string][]report.SaleRecord

func (d daySales) SalesBetween(_ context.Context, start, _ time.Time) ([]report.SaleRecord, error) {
	return d[start.Format(report.DateLayout)], nil
}

func TestNewRenderer(t *testing.T) {
	log := zaptest.NewLogger(t)
	rep := config.ReportConfig{Title: "DAILY", CurrencySymbol: "₺"}

	r, closeFn, err := NewRenderer(config.RendererConfig{Backend: config.RendererFPDF}, rep, log)
	require.NoError(t, err)
	assert.IsType(t, &pdf.FPDFRenderer{}, r)
	assert.NoError(t, closeFn())

	r, closeFn, err = NewRenderer(config.RendererConfig{Backend: config.RendererChrome}, rep, log)
	require.NoError(t, err)
	assert.IsType(t, &pdf.ChromeRenderer{}, r)
	assert.NoError(t, closeFn())

	_, _, err = NewRenderer(config.RendererConfig{Backend: "latex"}, rep, log)
	assert.Error(t, err)
}

func TestNewObjectStore(t *testing.T) {
	log := zaptest.NewLogger(t)
	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	cfg := &config.Config{
		App:     config.AppConfig{BaseURL: "http://localhost:8080"},
		Storage: config.StorageConfig{Backend: config.StorageLocal, LocalDir: t.TempDir()},
	}
	store, files, err := NewObjectStore(context.Background(), cfg, tokens, log)
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Same(t, files, store)

	cfg.Storage = config.StorageConfig{Backend: config.StorageS3, Bucket: "reports", Region: "eu-central-1", AccessKey: "k", SecretKey: "s"}
	store, files, err = NewObjectStore(context.Background(), cfg, tokens, log)
	require.NoError(t, err)
	assert.IsType(t, &storage.S3Store{}, store)
	assert.Nil(t, files)

	cfg.Storage.Backend = "ftp"
	_, _, err = NewObjectStore(context.Background(), cfg, tokens, log)
	assert.Error(t, err)
}

func newTestRouter(t *testing.T) (http.Handler, *auth.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)

	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	files, err := storage.NewLocalStore(t.TempDir(), "http://localhost:8080", tokens, log)
	require.NoError(t, err)
	renderer, _, err := NewRenderer(config.RendererConfig{Backend: config.RendererFPDF}, config.ReportConfig{CurrencySymbol: "₺"}, log)
	require.NoError(t, err)

	sales := daySales{"2025-07-28": {
		{Total: decimal.NewNullDecimal(decimal.NewFromInt(50)), Items: []report.LineItem{{Product: "Latte", Qty: 2}}},
		{Total: decimal.NewNullDecimal(decimal.NewFromInt(30)), Items: []report.LineItem{{Product: "Latte", Qty: 1}, {Product: "Türk Kahvesi", Qty: 1}}},
	}}
	svc := report.NewService(report.Config{
		PrivilegedRole: "yonetici",
		Location:       time.UTC,
		LinkExpiry:     time.Date(2491, 3, 9, 0, 0, 0, 0, time.UTC),
	}, sales, renderer, files, log)

	return NewRouter(RouterDeps{
		Logger:         log,
		Tokens:         tokens,
		Issuer:         tokens,
		Reports:        svc,
		Files:          files,
		PrivilegedRole: "yonetici",
	}), tokens
}

func requestReport(t *testing.T, h http.Handler, token, date string) (int, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/reports/daily", strings.NewReader(`{"date":"`+date+`"}`))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestRouter_DailyReportEndToEnd(t *testing.T) {
	h, tokens := newTestRouter(t)
	token, err := tokens.GenerateToken(4, "yonetici")
	require.NoError(t, err)

	status, body := requestReport(t, h, token, "2025-07-28")
	require.Equal(t, http.StatusOK, status)
	link, err := url.Parse(body["url"])
	require.NoError(t, err)
	assert.Equal(t, "/files/reports/2025-07-28_report.pdf", link.Path)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, link.RequestURI(), nil))
	require.Equal(t, http.StatusOK, w.Code)
	data, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	status, body = requestReport(t, h, token, "2025-07-27")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, report.NoDataMessage, body["message"])
}

func TestRouter_Rejections(t *testing.T) {
	h, tokens := newTestRouter(t)
	barista, err := tokens.GenerateToken(6, "barista")
	require.NoError(t, err)

	status, body := requestReport(t, h, barista, "2025-07-28")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthenticated", body["code"])
	assert.Empty(t, body["url"])

	status, _ = requestReport(t, h, "", "2025-07-28")
	assert.Equal(t, http.StatusUnauthorized, status)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/assistant", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
