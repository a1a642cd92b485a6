package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"go-pos-report/internal/auth"
	"go-pos-report/internal/logger"
	"go-pos-report/internal/report"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FileOpener opens a stored object after checking its link token.
type FileOpener interface {
	Open(key, token string) (*os.File, error)
}

type FileHandler struct {
	files FileOpener
}

func NewFileHandler(files FileOpener) *FileHandler {
	return &FileHandler{files: files}
}

// Download handles GET /files/*key?token=...
func (h *FileHandler) Download(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")

	f, err := h.files.Open(key, c.Query("token"))
	switch {
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrWrongObject):
		c.JSON(http.StatusForbidden, gin.H{"error": "This link is invalid or has expired"})
		return
	case errors.Is(err, fs.ErrNotExist):
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	case err != nil:
		logger.FromGin(c).Error("open stored file", zap.String("key", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		logger.FromGin(c).Error("stat stored file", zap.String("key", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}

	name := path.Base(key)
	if strings.EqualFold(path.Ext(name), ".pdf") {
		c.Header("Content-Type", report.ContentTypePDF)
	}
	c.Header("Content-Disposition", `inline; filename="`+name+`"`)
	http.ServeContent(c.Writer, c.Request, name, info.ModTime(), f)
}
