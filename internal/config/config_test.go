package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edition.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("XAI_API_KEY", "test-key")
	t.Setenv("CRON_SECRET", "s3cret")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.XAIAPIKey)
	assert.Equal(t, "s3cret", cfg.CronSecret)
	assert.True(t, cfg.SlackConfigured())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "grok-3-latest", cfg.XAIModel)
	assert.Equal(t, DefaultPipeline(), cfg.Pipeline)
	assert.Equal(t, DefaultTrustedOrigins, cfg.TrustedOrigins)
	assert.Equal(t, 300, cfg.GenerationTimeout)
}

func TestLoadConfigMissingCredentials(t *testing.T) {
	t.Setenv("XAI_API_KEY", "")
	t.Setenv("CRON_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err, "missing credentials should not fail loading")
	assert.False(t, cfg.ModelConfigured())
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("EDITION_CONFIG", writeConfigFile(t, `
siteUrl: https://example.test
trustedOrigins: [staging.example.test]
generateSchedule: ""
pipeline:
  topicCount: 6
  batchSize: 2
`))
	t.Setenv("PIPELINE_BATCH_SIZE", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://example.test", cfg.SiteURL)
	assert.Equal(t, []string{"staging.example.test"}, cfg.TrustedOrigins)
	assert.Empty(t, cfg.GenerateSchedule, "file disables the schedule")
	assert.Equal(t, 6, cfg.Pipeline.TopicCount)
	assert.Equal(t, 4, cfg.Pipeline.BatchSize, "env wins over file")
	assert.Equal(t, 8, cfg.Pipeline.MaxArticles)
}

func TestLoadConfigFileKeepsExplicitZero(t *testing.T) {
	t.Setenv("EDITION_CONFIG", writeConfigFile(t, `
pipeline:
  factCheckTopK: 0
  batchDelayMs: 0
`))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Zero(t, cfg.Pipeline.FactCheckTopK)
	assert.Zero(t, cfg.Pipeline.BatchDelayMS)
	assert.Equal(t, DefaultPipeline().TopicCount, cfg.Pipeline.TopicCount, "unset keys keep defaults")
}

func TestGenerationTimeoutFromEnv(t *testing.T) {
	t.Setenv("GENERATION_TIMEOUT_SECONDS", "90")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.GenerationTimeout)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{"gcs without bucket", map[string]string{"STORE_BACKEND": "gcs"}, "EDITION_BUCKET"},
		{"unknown backend", map[string]string{"STORE_BACKEND": "dynamo"}, "STORE_BACKEND"},
		{"redis without url", map[string]string{"STORE_BACKEND": "redis"}, "REDIS_URL"},
		{"unknown editor", map[string]string{"EDITOR_PROVIDER": "bard"}, "EDITOR_PROVIDER"},
		{"zero generation timeout", map[string]string{"GENERATION_TIMEOUT_SECONDS": "0"}, "GENERATION_TIMEOUT_SECONDS"},
		{"zero batch size", map[string]string{"PIPELINE_BATCH_SIZE": "0"}, "pipeline.batchSize"},
		{"negative delay", map[string]string{"PIPELINE_BATCH_DELAY_MS": "-1"}, "pipeline.batchDelayMs"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			for key, value := range test.env {
				t.Setenv(key, value)
			}

			_, err := Load()
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, test.field, cfgErr.Field)
		})
	}
}

func TestParseStringSlice(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", []string{}},
		{"a", []string{"a"}},
		{"a,b,c", []string{"a", "b", "c"}},
		{"a, b , c ", []string{"a", "b", "c"}},
		{"a,,b", []string{"a", "b"}},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, parseStringSlice(test.input), "input %q", test.input)
	}
}

func TestGeminiEditorProvider(t *testing.T) {
	t.Setenv("EDITOR_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "gem-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, cfg.EditorProvider)
	assert.Equal(t, "gem-key", cfg.GeminiAPIKey)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
}
