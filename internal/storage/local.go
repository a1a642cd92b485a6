// Package storage provides the durable object stores reports are published to.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-pos-report/internal/report"

	"go.uber.org/zap"
)

// Ensure LocalStore implements report.ObjectStore
var _ report.ObjectStore = (*LocalStore)(nil)

// LinkSigner issues and checks read tokens for stored objects.
type LinkSigner interface {
	SignLink(key string, expiresAt time.Time) (string, error)
	ValidateLink(token, key string) error
}

// LocalStore keeps objects on disk and serves them through signed links
// handled by the HTTP server under /files.
type LocalStore struct {
	root    string
	baseURL *url.URL
	signer  LinkSigner
	logger  *zap.Logger
}

func NewLocalStore(root, baseURL string, signer LinkSigner, logger *zap.Logger) (*LocalStore, error) {
	if root == "" {
		return nil, errors.New("storage directory is required")
	}
	if signer == nil {
		return nil, errors.New("link signer is required")
	}
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalStore{root: abs, baseURL: base, signer: signer, logger: logger}, nil
}

// Upload writes to a temporary file in the target directory and renames it
// into place, so readers see either the previous object or the complete new one.
func (s *LocalStore) Upload(ctx context.Context, key string, data []byte, _ report.UploadOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.Path(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp object: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close object: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod object: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish object: %w", err)
	}

	s.logger.Debug("object stored", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

// SignedURL returns an absolute /files link carrying a read token for key.
// The token expires exactly at expiresAt, however far away; use this backend
// when links must stay valid longer than S3 presigning allows.
func (s *LocalStore) SignedURL(_ context.Context, key string, expiresAt time.Time) (string, error) {
	path, err := s.Path(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("stat object: %w", err)
	}

	token, err := s.signer.SignLink(key, expiresAt)
	if err != nil {
		return "", fmt.Errorf("sign link: %w", err)
	}

	u := s.baseURL.JoinPath("files", key)
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Open returns the stored file for key after checking its link token.
func (s *LocalStore) Open(key, token string) (*os.File, error) {
	if err := s.signer.ValidateLink(token, key); err != nil {
		return nil, err
	}
	path, err := s.Path(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Path maps key to a file below the store root, rejecting keys that escape it.
func (s *LocalStore) Path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(key, "/")))
	if key == "" || clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}
