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

// Assistant answers operator questions, generating reports as the caller.
type Assistant interface {
	Ask(ctx context.Context, message string, id report.Identity) (string, error)
}

type AIHandler struct {
	assistant Assistant
}

func NewAIHandler(assistant Assistant) *AIHandler {
	return &AIHandler{assistant: assistant}
}

type AskRequest struct {
	Message string `json:"message" binding:"required"`
}

// Ask handles POST /api/assistant.
func (h *AIHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	reply, err := h.assistant.Ask(c.Request.Context(), req.Message, middleware.IdentityFrom(c))
	if err != nil {
		logger.FromGin(c).Error("assistant failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "The assistant is unavailable right now"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
