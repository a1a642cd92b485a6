package handlers

import (
	"context"
	"net/http"

	"go-pos-report/internal/logger"
	"go-pos-report/internal/middleware"
	"go-pos-report/internal/report"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReportGenerator runs the daily report pipeline.
type ReportGenerator interface {
	Generate(ctx context.Context, req report.Request, id report.Identity) (report.Result, error)
}

type ReportHandler struct {
	reports ReportGenerator
}

func NewReportHandler(reports ReportGenerator) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// DailyReportRequest is the body of POST /api/reports/daily.
type DailyReportRequest struct {
	Date string `json:"date"`
}

// GenerateDaily handles POST /api/reports/daily.
func (h *ReportHandler) GenerateDaily(c *gin.Context) {
	var input DailyReportRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		// The pipeline still runs so unauthenticated callers are told so
		// before anything about their input.
		logger.FromGin(c).Debug("unreadable report request body", zap.Error(err))
		input.Date = ""
	}

	res, err := h.reports.Generate(c.Request.Context(), report.Request{Date: input.Date}, middleware.IdentityFrom(c))
	if err != nil {
		_ = c.Error(err)
		respondError(c, err)
		return
	}

	if !res.HasLink() {
		c.JSON(http.StatusOK, gin.H{"message": res.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": res.URL})
}

// respondError writes the caller-visible part of a pipeline error.
func respondError(c *gin.Context, err error) {
	kind, msg := report.Public(err)
	status := http.StatusInternalServerError
	switch kind {
	case report.KindUnauthenticated:
		status = http.StatusUnauthorized
	case report.KindInvalidArgument:
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": msg, "code": string(kind)})
}
