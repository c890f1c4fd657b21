package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.BioWorkers, "Bio pool should default to five workers")
	assert.Equal(t, "0 2 * * *", cfg.NightlyRefreshCron)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
	assert.True(t, cfg.RankingsDetailedView)
	assert.False(t, cfg.PipelineSequential)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_MissingPassword(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "")

	_, err := Load()
	assert.Error(t, err, "Empty database password must be rejected")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			DatabasePassword:     "secret",
			BioWorkers:           5,
			SourceMaxConcurrency: 10,
			SourceMaxRetries:     3,
			EnableScheduler:      true,
			NightlyRefreshCron:   "0 2 * * *",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "zero workers", mutate: func(c *Config) { c.BioWorkers = 0 }, wantErr: true},
		{name: "zero concurrency", mutate: func(c *Config) { c.SourceMaxConcurrency = 0 }, wantErr: true},
		{name: "negative retries", mutate: func(c *Config) { c.SourceMaxRetries = -1 }, wantErr: true},
		{name: "scheduler without cron", mutate: func(c *Config) { c.NightlyRefreshCron = "" }, wantErr: true},
		{name: "cron ignored when scheduler off", mutate: func(c *Config) {
			c.EnableScheduler = false
			c.NightlyRefreshCron = ""
		}},
		{name: "dynamo without table", mutate: func(c *Config) {
			c.DynamoExportEnabled = true
			c.DynamoTable = ""
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
