package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	t.Setenv("POS_JWT_SECRET", "test-secret")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.False(t, cfg.App.AllowRegistration)
	assert.Equal(t, "kasiyer", cfg.App.RegistrationRole)
	assert.Equal(t, 5, cfg.Database.ConnectAttempts)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, "yonetici", cfg.Report.PrivilegedRole)
	assert.Equal(t, "₺", cfg.Report.CurrencySymbol)
	assert.Equal(t, "KAHVECİM - GÜNLÜK RAPOR", cfg.Report.Title)
	assert.Equal(t, RendererFPDF, cfg.Renderer.Backend)
	assert.Equal(t, StorageLocal, cfg.Storage.Backend)

	expiry, err := cfg.Report.Expiry()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2491, 3, 9, 0, 0, 0, 0, time.UTC), expiry)

	loc, err := cfg.Report.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestFromViper_EnvironmentOverrides(t *testing.T) {
	t.Setenv("POS_JWT_SECRET", "test-secret")
	t.Setenv("POS_REPORT_PRIVILEGED_ROLE", "manager")
	t.Setenv("POS_REPORT_TIMEZONE", "UTC")
	t.Setenv("POS_REPORT_LINK_EXPIRY", "2030-01-02T03:04:05Z")
	t.Setenv("POS_STORAGE_BACKEND", "S3")
	t.Setenv("POS_STORAGE_BUCKET", "reports")
	t.Setenv("POS_APP_BASE_URL", "https://pos.example/")
	t.Setenv("POS_APP_ALLOW_REGISTRATION", "true")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "manager", cfg.Report.PrivilegedRole)
	assert.Equal(t, StorageS3, cfg.Storage.Backend)
	assert.Equal(t, "reports", cfg.Storage.Bucket)
	assert.Equal(t, "https://pos.example", cfg.App.BaseURL)
	assert.True(t, cfg.App.AllowRegistration)

	sc, err := cfg.Report.ServiceConfig()
	require.NoError(t, err)
	assert.Equal(t, "manager", sc.PrivilegedRole)
	assert.Equal(t, time.UTC, sc.Location)
	assert.Equal(t, time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC), sc.LinkExpiry)
}

func TestFromViper_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{}, "jwt.secret"},
		{"empty role", map[string]string{"POS_REPORT_PRIVILEGED_ROLE": " "}, "report.privileged_role"},
		{"bad timezone", map[string]string{"POS_REPORT_TIMEZONE": "Mars/Olympus"}, "report.timezone"},
		{"bad expiry", map[string]string{"POS_REPORT_LINK_EXPIRY": "forever"}, "report.link_expiry"},
		{"bad renderer", map[string]string{"POS_RENDERER_BACKEND": "latex"}, "renderer.backend"},
		{"bad storage", map[string]string{"POS_STORAGE_BACKEND": "ftp"}, "storage.backend"},
		{"s3 without bucket", map[string]string{"POS_STORAGE_BACKEND": "s3"}, "storage.bucket"},
		{"ai without key", map[string]string{"POS_AI_ENABLED": "true"}, "ai.api_key"},
		{"self-registered managers", map[string]string{
			"POS_APP_ALLOW_REGISTRATION": "true",
			"POS_APP_REGISTRATION_ROLE":  "yonetici",
		}, "app.registration_role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.name != "missing secret" {
				t.Setenv("POS_JWT_SECRET", "test-secret")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := FromViper(viper.New())

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
