package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/bibbank/loanengine/pkg/kafka"
	"github.com/bibbank/loanengine/pkg/observability"
	"github.com/bibbank/loanengine/pkg/postgres"
)

type KafkaConfig struct {
	kafka.Config
	Topic   string
	Enabled bool
}

type MoraConfig struct {
	DailyRate      decimal.Decimal
	Workers        int
	PromotePending bool
}

type TracingConfig struct {
	Endpoint    string
	SampleRatio float64
	Insecure    bool
}

// RedisConfig enables the evaluation cache when URL is set.
type RedisConfig struct {
	URL string
	TTL time.Duration
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type Config struct {
	ServiceName string
	ScoringFile string
	Log         observability.LogConfig
	DB          postgres.Config
	Kafka       KafkaConfig
	Redis       RedisConfig
	TLS         TLSConfig
	Tracing     TracingConfig
	Mora        MoraConfig
	GRPCPort    int
	HTTPPort    int
	Reflection  bool
}

// LoadDotEnv loads variables from the given .env files (".env" when none are
// named) without overriding the real environment. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func Load() Config {
	return Config{
		GRPCPort: getEnvInt("GRPC_PORT", 9095),
		HTTPPort: getEnvInt("HTTP_PORT", 8095),
		DB: postgres.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "bib"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "bib_loanengine"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
		},
		Kafka: KafkaConfig{
			Config: kafka.Config{
				Brokers:       splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
				TLS:           getEnvBool("KAFKA_TLS", false),
				SASLEnabled:   getEnvBool("KAFKA_SASL_ENABLED", false),
				SASLMechanism: getEnv("KAFKA_SASL_MECHANISM", ""),
				SASLUsername:  getEnv("KAFKA_SASL_USERNAME", ""),
				SASLPassword:  getEnv("KAFKA_SASL_PASSWORD", ""),
			},
			Topic:   getEnv("KAFKA_TOPIC", "loanengine.events"),
			Enabled: getEnvBool("KAFKA_ENABLED", true),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
			TTL: getEnvDuration("EVALUATION_CACHE_TTL", 15*time.Minute),
		},
		Log: observability.LogConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Format:  getEnv("LOG_FORMAT", "json"),
			Service: "loanengine",
		},
		TLS: TLSConfig{
			CertFile: getEnv("TLS_CERT_FILE", ""),
			KeyFile:  getEnv("TLS_KEY_FILE", ""),
		},
		Tracing: TracingConfig{
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			SampleRatio: getEnvFloat("OTEL_TRACES_SAMPLE_RATIO", 1),
			Insecure:    getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		},
		Mora: MoraConfig{
			DailyRate:      getEnvDecimal("MORA_DAILY_RATE", decimal.RequireFromString("0.001")),
			Workers:        getEnvInt("MORA_WORKERS", 4),
			PromotePending: getEnvBool("MORA_PROMOTE_PENDING", true),
		},
		ScoringFile: getEnv("SCORING_CONFIG", "configs/scoring.yaml"),
		ServiceName: "loanengine",
		Reflection:  getEnvBool("GRPC_REFLECTION", false),
	}
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var errs []error
	if c.DB.Password == "" {
		errs = append(errs, errors.New("DB_PASSWORD environment variable is required"))
	}
	if c.Mora.DailyRate.IsNegative() {
		errs = append(errs, fmt.Errorf("MORA_DAILY_RATE must not be negative, got %s", c.Mora.DailyRate))
	}
	if c.Mora.Workers < 1 {
		errs = append(errs, fmt.Errorf("MORA_WORKERS must be at least 1, got %d", c.Mora.Workers))
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is set"))
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together"))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("OTEL_TRACES_SAMPLE_RATIO must be within [0, 1], got %g", c.Tracing.SampleRatio))
	}
	if c.Redis.URL != "" && c.Redis.TTL <= 0 {
		errs = append(errs, fmt.Errorf("EVALUATION_CACHE_TTL must be positive, got %s", c.Redis.TTL))
	}
	if c.ScoringFile == "" {
		errs = append(errs, errors.New("SCORING_CONFIG is required"))
	}
	return errors.Join(errs...)
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
