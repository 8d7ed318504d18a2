package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/loanengine/internal/domain/model"
	"github.com/bibbank/loanengine/internal/domain/service"
	"github.com/bibbank/loanengine/internal/domain/valueobject"
	"github.com/bibbank/loanengine/internal/infrastructure/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")

	cfg := config.Load()

	assert.Equal(t, ":9095", cfg.GRPCAddr())
	assert.Equal(t, ":8095", cfg.HTTPAddr())
	assert.Equal(t, "bib_loanengine", cfg.DB.Database)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "0.001", cfg.Mora.DailyRate.String())
	assert.Equal(t, 4, cfg.Mora.Workers)
	assert.Empty(t, cfg.Tracing.Endpoint)
	assert.Equal(t, "loanengine", cfg.Log.Service)
	assert.False(t, cfg.Reflection)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, 15*time.Minute, cfg.Redis.TTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("GRPC_PORT", "7000")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("MORA_DAILY_RATE", "0.0025")
	t.Setenv("MORA_WORKERS", "not-a-number")
	t.Setenv("MORA_PROMOTE_PENDING", "false")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel-collector:4317")
	t.Setenv("OTEL_TRACES_SAMPLE_RATIO", "0.25")
	t.Setenv("GRPC_REFLECTION", "true")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("EVALUATION_CACHE_TTL", "2m")

	cfg := config.Load()

	assert.Equal(t, 7000, cfg.GRPCPort)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "0.0025", cfg.Mora.DailyRate.String())
	assert.Equal(t, 4, cfg.Mora.Workers, "unparseable values fall back to the default")
	assert.False(t, cfg.Mora.PromotePending)
	assert.Equal(t, "otel-collector:4317", cfg.Tracing.Endpoint)
	assert.InDelta(t, 0.25, cfg.Tracing.SampleRatio, 1e-9)
	assert.True(t, cfg.Reflection)
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
	assert.Equal(t, 2*time.Minute, cfg.Redis.TTL)
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("MORA_DAILY_RATE", "-0.1")
	t.Setenv("MORA_WORKERS", "0")
	t.Setenv("TLS_CERT_FILE", "/etc/tls/cert.pem")
	t.Setenv("OTEL_TRACES_SAMPLE_RATIO", "1.5")
	t.Setenv("REDIS_URL", "redis://cache:6379")
	t.Setenv("EVALUATION_CACHE_TTL", "-1s")

	err := config.Load().Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")
	assert.Contains(t, err.Error(), "MORA_DAILY_RATE")
	assert.Contains(t, err.Error(), "MORA_WORKERS")
	assert.Contains(t, err.Error(), "TLS_CERT_FILE")
	assert.Contains(t, err.Error(), "OTEL_TRACES_SAMPLE_RATIO")
	assert.Contains(t, err.Error(), "EVALUATION_CACHE_TTL")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("LOANENGINE_DOTENV_PROBE=from-file\n"), 0o600))
	t.Setenv("LOANENGINE_DOTENV_PROBE", "")
	require.NoError(t, os.Unsetenv("LOANENGINE_DOTENV_PROBE"))

	require.NoError(t, config.LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("LOANENGINE_DOTENV_PROBE"))
}

func TestNewScoringEngine_ShippedConfig(t *testing.T) {
	engine, err := config.NewScoringEngine(filepath.Join("..", "..", "..", "configs", "scoring.yaml"))
	require.NoError(t, err)
	assert.Len(t, engine.Criteria(), 7)

	result := engine.Evaluate(model.ApplicantProfile{Age: 40})
	assert.True(t, result.Classification().Equal(valueobject.RiskRejected))
}

func TestParseScoring(t *testing.T) {
	t.Run("builds criteria and tables", func(t *testing.T) {
		cfg, err := config.ParseScoring([]byte(`
criteria:
  - kind: age
    name: applicant_age
    weight: "40"
  - kind: collateral
    weight: "60"
bands:
  - {classification: LOW_RISK, min_score: "50", decision: APPROVE, interest_rate: "12", max_term: 48}
  - {classification: REJECTED, min_score: "0", decision: REJECT}
`))
		require.NoError(t, err)

		criteria, policy, err := cfg.Build()
		require.NoError(t, err)
		require.Len(t, criteria, 2)
		assert.Equal(t, "applicant_age", criteria[0].Name)
		assert.Equal(t, "collateral", criteria[1].Name)
		assert.Equal(t, "60", criteria[1].MaxWeight.String())
		assert.Equal(t, valueobject.DecisionApprove, policy.Decisions[valueobject.RiskLow])
		assert.Equal(t, 48, policy.Conditions[valueobject.RiskLow].MaxTerm)
		assert.True(t, policy.Conditions[valueobject.RiskRejected].InterestRate.IsZero())
	})

	t.Run("rejects misordered conditions", func(t *testing.T) {
		cfg, err := config.ParseScoring([]byte(`
criteria:
  - {kind: age, weight: "100"}
bands:
  - {classification: LOW_RISK, min_score: "70", decision: APPROVE, interest_rate: "25", max_term: 48}
  - {classification: MEDIUM_RISK, min_score: "40", decision: APPROVE_WITH_CONDITIONS, interest_rate: "15", max_term: 36}
  - {classification: REJECTED, min_score: "0", decision: REJECT}
`))
		require.NoError(t, err)
		criteria, policy, err := cfg.Build()
		require.NoError(t, err)

		_, err = service.NewCreditScoringEngine(criteria, policy)
		assert.ErrorIs(t, err, model.ErrInvalidPolicy)
		assert.ErrorContains(t, err, "conditions.MEDIUM_RISK")
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		_, err := config.ParseScoring([]byte("criteria: []\nthresholds: {}\n"))
		assert.Error(t, err)
	})

	t.Run("rejects an empty document", func(t *testing.T) {
		_, err := config.ParseScoring(nil)
		assert.Error(t, err)
	})

	t.Run("rejects unknown criterion kinds", func(t *testing.T) {
		cfg, err := config.ParseScoring([]byte("criteria:\n  - {kind: horoscope, weight: \"100\"}\n"))
		require.NoError(t, err)
		_, _, err = cfg.Build()
		assert.ErrorIs(t, err, model.ErrInvalidCriteria)
	})

	t.Run("rejects unknown classifications", func(t *testing.T) {
		cfg, err := config.ParseScoring([]byte("bands:\n  - {classification: PLATINUM, min_score: \"0\", decision: APPROVE}\n"))
		require.NoError(t, err)
		_, _, err = cfg.Build()
		assert.Error(t, err)
	})
}

func TestNewScoringEngine_WeightsMustSumTo100(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
criteria:
  - {kind: age, weight: "50"}
  - {kind: collateral, weight: "45"}
bands:
  - {classification: REJECTED, min_score: "0", decision: REJECT}
`), 0o600))

	_, err := config.NewScoringEngine(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidCriteria)
}
