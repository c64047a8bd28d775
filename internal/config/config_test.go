package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
	}{
		{
			name: "valid config",
			envVars: map[string]string{
				"GEMINI_API_KEY": "test-key",
				"SERVER_PORT":    "8080",
				"LOG_LEVEL":      "info",
				"DOWNLOADS_PATH": "/downloads",
			},
			wantErr: false,
		},
		{
			name: "missing required API key",
			envVars: map[string]string{
				"SERVER_PORT": "8080",
				"LOG_LEVEL":   "info",
			},
			wantErr: true,
		},
		{
			name: "defaults applied",
			envVars: map[string]string{
				"GEMINI_API_KEY": "test-key",
			},
			wantErr: false,
		},
		{
			name: "invalid log level",
			envVars: map[string]string{
				"GEMINI_API_KEY": "test-key",
				"LOG_LEVEL":      "verbose",
			},
			wantErr: true,
		},
		{
			name: "invalid backend url",
			envVars: map[string]string{
				"GEMINI_API_KEY": "test-key",
				"BACKEND_URL":    "not-a-url",
			},
			wantErr: true,
		},
		{
			name: "backend url with trailing slash",
			envVars: map[string]string{
				"GEMINI_API_KEY": "test-key",
				"BACKEND_URL":    "https://engine.example.com/",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for key, value := range tt.envVars {
				os.Setenv(key, value)
			}

			cfg, err := Load()

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			require.Equal(t, "test-key", cfg.GeminiAPIKey)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.ServerPort)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "tubestream.db", cfg.DatabasePath)
	require.Equal(t, "downloads", cfg.DownloadsPath)
	require.Equal(t, "gemini-flash-lite-latest", cfg.GeminiModel)
	require.Empty(t, cfg.BackendURL)
	require.Empty(t, cfg.RedisAddr)
}

func TestConfig_Validate_TrimsBackendURL(t *testing.T) {
	cfg := &Config{
		GeminiAPIKey:  "test-key",
		LogLevel:      "info",
		DownloadsPath: "/downloads",
		BackendURL:    "https://engine.example.com/ ",
	}

	require.NoError(t, cfg.Validate())
	require.Equal(t, "https://engine.example.com", cfg.BackendURL)
}
