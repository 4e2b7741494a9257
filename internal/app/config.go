package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/restaurant-orders/internal/messaging/kafka"
)

// Поддерживаемые драйверы хранилища.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// Префикс переменных окружения сервиса.
const envPrefix = "ORDERS_"

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	GRPCAddr    string
	MetricsAddr string

	StorageDriver       string
	PostgresDSN         string
	PostgresAutoMigrate bool

	// PreparationBaseURL пустой: уведомления копятся в outbox без доставки.
	PreparationBaseURL string
	PreparationTimeout time.Duration

	// KafkaBrokers: список брокеров через запятую; пустой отключает DLQ.
	KafkaBrokers  string
	KafkaDLQTopic string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration

	RequestTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// DefaultConfig возвращает настройки для локального запуска.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		GRPCAddr:            ":50051",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		PreparationTimeout:  5 * time.Second,
		KafkaDLQTopic:       kafka.TopicPreparationDLQ,
		OutboxPollInterval:  time.Second,
		OutboxBatchSize:     100,
		OutboxMaxAttempts:   3,
		OutboxRetryDelay:    50 * time.Millisecond,
		RequestTimeout:      30 * time.Second,
		LogLevel:            "info",
		LogFormat:           "text",
	}
}

// LoadConfigFromEnv накладывает переменные окружения на DefaultConfig.
// lookup обычно os.LookupEnv; ошибки разбора собираются вместе.
func LoadConfigFromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()
	p := envParser{lookup: lookup}

	p.str("HTTP_ADDR", &cfg.HTTPAddr)
	p.str("GRPC_ADDR", &cfg.GRPCAddr)
	p.str("METRICS_ADDR", &cfg.MetricsAddr)
	p.str("STORAGE_DRIVER", &cfg.StorageDriver)
	p.str("POSTGRES_DSN", &cfg.PostgresDSN)
	p.boolean("POSTGRES_AUTO_MIGRATE", &cfg.PostgresAutoMigrate)
	if v, ok := lookup("PREPARATION_MS_HOST"); ok {
		cfg.PreparationBaseURL = strings.TrimSpace(v)
	}
	p.str("PREPARATION_BASE_URL", &cfg.PreparationBaseURL)
	p.duration("PREPARATION_TIMEOUT", &cfg.PreparationTimeout)
	p.str("KAFKA_BROKERS", &cfg.KafkaBrokers)
	p.str("KAFKA_DLQ_TOPIC", &cfg.KafkaDLQTopic)
	p.duration("OUTBOX_POLL_INTERVAL", &cfg.OutboxPollInterval)
	p.integer("OUTBOX_BATCH_SIZE", &cfg.OutboxBatchSize)
	p.integer("OUTBOX_MAX_ATTEMPTS", &cfg.OutboxMaxAttempts)
	p.duration("OUTBOX_RETRY_DELAY", &cfg.OutboxRetryDelay)
	p.duration("REQUEST_TIMEOUT", &cfg.RequestTimeout)
	p.str("LOG_LEVEL", &cfg.LogLevel)
	p.str("LOG_FORMAT", &cfg.LogFormat)

	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	var errs []error
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			errs = append(errs, fmt.Errorf("%sPOSTGRES_DSN is required for postgres storage", envPrefix))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported storage driver %q", c.StorageDriver))
	}
	if c.OutboxPollInterval <= 0 {
		errs = append(errs, fmt.Errorf("%sOUTBOX_POLL_INTERVAL must be > 0", envPrefix))
	}
	if c.OutboxBatchSize <= 0 {
		errs = append(errs, fmt.Errorf("%sOUTBOX_BATCH_SIZE must be > 0", envPrefix))
	}
	if c.OutboxMaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("%sOUTBOX_MAX_ATTEMPTS must be > 0", envPrefix))
	}
	if c.OutboxRetryDelay < 0 {
		errs = append(errs, fmt.Errorf("%sOUTBOX_RETRY_DELAY must be >= 0", envPrefix))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%sREQUEST_TIMEOUT must be > 0", envPrefix))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%sLOG_FORMAT must be text or json, got %q", envPrefix, c.LogFormat))
	}
	return errors.Join(errs...)
}

// KafkaBrokerList разбивает KafkaBrokers на отдельные адреса.
func (c Config) KafkaBrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

type envParser struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (p *envParser) get(key string) (string, bool) {
	v, ok := p.lookup(envPrefix + key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (p *envParser) str(key string, dst *string) {
	if v, ok := p.get(key); ok && v != "" {
		*dst = v
	}
}

func (p *envParser) boolean(key string, dst *bool) {
	v, ok := p.get(key)
	if !ok || v == "" {
		return
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s%s: invalid bool %q", envPrefix, key, v))
		return
	}
	*dst = parsed
}

func (p *envParser) integer(key string, dst *int) {
	v, ok := p.get(key)
	if !ok || v == "" {
		return
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s%s: invalid integer %q", envPrefix, key, v))
		return
	}
	*dst = parsed
}

func (p *envParser) duration(key string, dst *time.Duration) {
	v, ok := p.get(key)
	if !ok || v == "" {
		return
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s%s: invalid duration %q", envPrefix, key, v))
		return
	}
	*dst = parsed
}
