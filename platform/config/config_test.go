package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/leads")
	t.Setenv("CORS_ORIGINS", "http://localhost:4200")
	t.Setenv("CORS_ALLOW_ALL", "false")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")
	t.Setenv("ENGINE_RUN_INTERVAL", "5m")
	t.Setenv("SCORING_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("MINIO_ENDPOINT", "")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/leads", cfg.GetDatabaseURL())
	assert.True(t, cfg.GetScoringEnabled())
	assert.Equal(t, 5*time.Minute, cfg.GetEngineRunInterval())
	assert.Equal(t, []string{"http://localhost:4200"}, cfg.GetCORSOrigins())
	assert.False(t, cfg.IsKafkaEnabled())
	assert.False(t, cfg.IsMinIOEnabled())
}

func TestLoadScoringDisabledOnlyByExplicitFalse(t *testing.T) {
	setBaseEnv(t)

	t.Setenv("SCORING_ENABLED", "FALSE")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.GetScoringEnabled())

	t.Setenv("SCORING_ENABLED", "garbage")
	cfg, err = Load()
	require.NoError(t, err)
	assert.True(t, cfg.GetScoringEnabled())
}

func TestLoadParsesKafkaBrokers(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.GetKafkaBrokers())
	assert.True(t, cfg.IsKafkaEnabled())
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing database url", map[string]string{"DATABASE_URL": ""}},
		{"wildcard with credentials", map[string]string{"CORS_ORIGINS": "*"}},
		{"no origins", map[string]string{"CORS_ORIGINS": " , "}},
		{"bad interval", map[string]string{"ENGINE_RUN_INTERVAL": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
