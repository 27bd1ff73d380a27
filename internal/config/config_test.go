package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/auditmarks/internal/config"
)

const azurite = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

const baseConfig = `
version = "1.2.0"
log_level = "debug"

[server]
port = 9090

[database]
name = "auditmarks"
user = "auditor"

[storage]
connection_string = "` + azurite + `"

[api]
base_path = "/v1"

[marks]
batch_size = 250
extensions = [".xlsx"]
`

// workdir switches to a fresh directory holding the given files.
func workdir(t *testing.T, files map[string]string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	t.Chdir(dir)
}

// minimalEnv supplies the settings that have no defaults.
func minimalEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AUDITMARKS_DB_NAME", "auditmarks")
	t.Setenv("AUDITMARKS_DB_USER", "auditor")
	t.Setenv("AUDITMARKS_STORAGE_CONNECTION_STRING", azurite)
}

func TestLoadBaseFile(t *testing.T) {
	workdir(t, map[string]string{config.BaseConfigFile: baseConfig})

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "1.2.0", cfg.Version)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, "auditmarks", cfg.Database.Name)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "workpapers", cfg.Storage.ContainerName)
	assert.Equal(t, "/v1", cfg.API.BasePath)
	assert.Equal(t, 250, cfg.Marks.BatchSize)
	assert.Equal(t, []string{".xlsx"}, cfg.Marks.Extensions)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeoutDuration())
}

func TestLoadOverlay(t *testing.T) {
	workdir(t, map[string]string{
		config.BaseConfigFile: baseConfig,
		"config.staging.toml": `
log_level = "warn"

[server]
port = 8443

[marks]
footer_title = "AUDIT MARKS USED:"
`,
	})
	t.Setenv(config.EnvAuditMarksEnv, "staging")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Env())
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
	assert.Equal(t, 8443, cfg.Server.Port)
	assert.Equal(t, "AUDIT MARKS USED:", cfg.Marks.FooterTitle)
	assert.Equal(t, 250, cfg.Marks.BatchSize)
	assert.Equal(t, "1.2.0", cfg.Version)
}

func TestLoadMissingOverlayIgnored(t *testing.T) {
	workdir(t, map[string]string{config.BaseConfigFile: baseConfig})
	t.Setenv(config.EnvAuditMarksEnv, "production")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadEnvOverrides(t *testing.T) {
	workdir(t, map[string]string{config.BaseConfigFile: baseConfig})
	t.Setenv(config.EnvAuditMarksVersion, "2.0.0")
	t.Setenv(config.EnvServerPort, "7070")
	t.Setenv("AUDITMARKS_MARKS_BATCH_SIZE", "50")
	t.Setenv("AUDITMARKS_MARKS_EXTENSIONS", ".xlsx, .xlsm")
	t.Setenv("AUDITMARKS_API_MAX_UPLOAD_SIZE", "10MB")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "2.0.0", cfg.Version)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 50, cfg.Marks.BatchSize)
	assert.Equal(t, []string{".xlsx", ".xlsm"}, cfg.Marks.Extensions)
	assert.Equal(t, int64(10*1024*1024), cfg.API.MaxUploadSizeBytes())
}

func TestLoadWithoutFile(t *testing.T) {
	workdir(t, nil)
	minimalEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env())
	assert.Equal(t, "0.1.0", cfg.Version)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "/api", cfg.API.BasePath)
	assert.Equal(t, int64(50*1024*1024), cfg.API.MaxUploadSizeBytes())
	assert.Equal(t, int64(5*1024*1024), cfg.Marks.MaxImportSizeBytes())
	assert.Equal(t, []string{".xlsx", ".xls"}, cfg.Marks.Extensions)
	assert.Equal(t, 500, cfg.Marks.BatchSize)
	assert.Equal(t, "MARCAS DE AUDITORÍA UTILIZADAS:", cfg.Marks.FooterTitle)
	assert.Equal(t, "0070C0", cfg.Marks.AccentColor)
	assert.Equal(t, 11.0, cfg.Marks.FontSize)
	assert.Equal(t, 3, cfg.Marks.TrailingGap)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "invalid toml",
			files:   map[string]string{config.BaseConfigFile: "version = "},
			wantErr: "parse config",
		},
		{
			name:    "invalid overlay",
			files:   map[string]string{config.BaseConfigFile: baseConfig, "config.qa.toml": "[server"},
			env:     map[string]string{config.EnvAuditMarksEnv: "qa"},
			wantErr: "load overlay config.qa.toml",
		},
		{
			name:    "missing database name",
			env:     map[string]string{"AUDITMARKS_STORAGE_CONNECTION_STRING": azurite, "AUDITMARKS_DB_USER": "auditor"},
			wantErr: "database: name required",
		},
		{
			name:    "missing storage credentials",
			env:     map[string]string{"AUDITMARKS_DB_NAME": "auditmarks", "AUDITMARKS_DB_USER": "auditor"},
			wantErr: "storage: connection_string or service_url required",
		},
		{
			name:    "invalid log level",
			files:   map[string]string{config.BaseConfigFile: baseConfig},
			env:     map[string]string{config.EnvAuditMarksLogLevel: "loud"},
			wantErr: "invalid log_level",
		},
		{
			name:    "invalid shutdown timeout",
			files:   map[string]string{config.BaseConfigFile: baseConfig},
			env:     map[string]string{config.EnvAuditMarksShutdownTimeout: "soon"},
			wantErr: "invalid shutdown_timeout",
		},
		{
			name:    "invalid server port",
			files:   map[string]string{config.BaseConfigFile: baseConfig},
			env:     map[string]string{config.EnvServerPort: "70000"},
			wantErr: "server: invalid port",
		},
		{
			name:    "extension without dot",
			files:   map[string]string{config.BaseConfigFile: baseConfig},
			env:     map[string]string{"AUDITMARKS_MARKS_EXTENSIONS": "xlsx"},
			wantErr: `marks: invalid extension "xlsx"`,
		},
		{
			name:    "invalid import size",
			files:   map[string]string{config.BaseConfigFile: baseConfig},
			env:     map[string]string{"AUDITMARKS_MARKS_MAX_IMPORT_SIZE": "lots"},
			wantErr: "marks: invalid max_import_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workdir(t, tt.files)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMerge(t *testing.T) {
	base := config.Config{
		Version:  "1.0.0",
		LogLevel: "info",
		Marks:    config.MarksConfig{BatchSize: 500, AccentColor: "0070C0"},
	}
	base.Merge(&config.Config{
		LogLevel: "error",
		Marks:    config.MarksConfig{AccentColor: "C00000"},
	})

	assert.Equal(t, "1.0.0", base.Version)
	assert.Equal(t, "error", base.LogLevel)
	assert.Equal(t, 500, base.Marks.BatchSize)
	assert.Equal(t, "C00000", base.Marks.AccentColor)
}

func TestSizeFallbacks(t *testing.T) {
	api := config.APIConfig{MaxUploadSize: "bogus"}
	assert.Equal(t, int64(50*1024*1024), api.MaxUploadSizeBytes())

	marks := config.MarksConfig{MaxImportSize: "bogus"}
	assert.Equal(t, int64(5*1024*1024), marks.MaxImportSizeBytes())
}
