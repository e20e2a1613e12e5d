package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	apperrors "github.com/acme/vapi-caller/pkg/errors"
)

// Provider names accepted by call_bridge.provider_name.
const (
	ProviderVapi = "vapi"
	ProviderMock = "mock"
)

// Config captures the full configuration surface for the application.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Vapi        VapiConfig        `mapstructure:"vapi"`
	Poll        PollConfig        `mapstructure:"poll"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
	CallBridge  CallBridgeConfig  `mapstructure:"call_bridge"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type HTTPConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// VapiConfig holds the remote API location, credentials and call defaults.
type VapiConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	AssistantID    string        `mapstructure:"assistant_id"`
	PhoneNumberID  string        `mapstructure:"phone_number_id"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Retry          RetryConfig   `mapstructure:"retry"`
}

// String hides the API key so the config can be logged.
func (c VapiConfig) String() string {
	return fmt.Sprintf("{base_url:%s api_key:%s assistant_id:%s phone_number_id:%s request_timeout:%s}",
		c.BaseURL, MaskSecret(c.APIKey), c.AssistantID, c.PhoneNumberID, c.RequestTimeout)
}

// RetryConfig bounds retries of idempotent GET requests. MaxAttempts of 1 disables retries.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
}

type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type RedisConfig struct {
	Address      string        `mapstructure:"address"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

// Enabled reports whether a redis address was configured.
func (c RedisConfig) Enabled() bool {
	return c.Address != ""
}

type IdempotencyConfig struct {
	TTL       time.Duration `mapstructure:"ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

type KafkaConfig struct {
	Brokers    []string `mapstructure:"brokers"`
	ClientID   string   `mapstructure:"client_id"`
	EventTopic string   `mapstructure:"event_topic"`
	Partitions int      `mapstructure:"partitions"`

	ReplicationFactor int `mapstructure:"replication_factor"`
}

// Enabled reports whether brokers were configured.
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

type TelemetryConfig struct {
	Endpoint        string        `mapstructure:"endpoint"`
	ServiceName     string        `mapstructure:"service_name"`
	SampleRatio     float64       `mapstructure:"sample_ratio"`
	TracingEnabled  bool          `mapstructure:"tracing_enabled"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type CallBridgeConfig struct {
	ProviderName string `mapstructure:"provider_name"`
}

// Load reads configuration from an optional file and environment variables.
// Keys map to env vars by upper-casing and replacing dots, so vapi.api_key is VAPI_API_KEY.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(NewEnvReplacer())

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read config file: %w", err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal config: %w", err)
	}
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)

	return cfg, nil
}

// Validate checks the fields required by the selected provider.
func (c *Config) Validate() error {
	var missing []string
	switch c.CallBridge.ProviderName {
	case ProviderVapi:
		if c.Vapi.APIKey == "" {
			missing = append(missing, "vapi.api_key")
		}
		if c.Vapi.BaseURL == "" {
			missing = append(missing, "vapi.base_url")
		}
	case ProviderMock:
	default:
		return fmt.Errorf("%w: config: unknown call_bridge.provider_name %q", apperrors.ErrValidation, c.CallBridge.ProviderName)
	}
	if c.Vapi.Retry.MaxAttempts < 1 {
		missing = append(missing, "vapi.retry.max_attempts (>= 1)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: config: missing %s", apperrors.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// NewEnvReplacer standardizes environment variable names.
func NewEnvReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_", "-", "_")
}

// MaskSecret keeps the last four characters of a secret.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "vapi-caller")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.version", "dev")

	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 6*time.Minute)
	v.SetDefault("http.idle_timeout", 60*time.Second)

	v.SetDefault("vapi.base_url", "https://api.vapi.ai")
	v.SetDefault("vapi.api_key", "")
	v.SetDefault("vapi.assistant_id", "")
	v.SetDefault("vapi.phone_number_id", "")
	v.SetDefault("vapi.request_timeout", 30*time.Second)
	v.SetDefault("vapi.retry.max_attempts", 1)
	v.SetDefault("vapi.retry.base_delay", 500*time.Millisecond)
	v.SetDefault("vapi.retry.max_delay", 5*time.Second)

	v.SetDefault("poll.interval", 3*time.Second)
	v.SetDefault("poll.timeout", 5*time.Minute)

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 0)
	v.SetDefault("redis.max_retries", 3)

	v.SetDefault("idempotency.ttl", 24*time.Hour)
	v.SetDefault("idempotency.key_prefix", "vapi:idempotency")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.client_id", "vapi-caller")
	v.SetDefault("kafka.event_topic", "vapi.call.events")
	v.SetDefault("kafka.partitions", 6)
	v.SetDefault("kafka.replication_factor", 1)

	v.SetDefault("telemetry.endpoint", "localhost:4318")
	v.SetDefault("telemetry.service_name", "vapi-caller")
	v.SetDefault("telemetry.sample_ratio", 1.0)
	v.SetDefault("telemetry.tracing_enabled", false)
	v.SetDefault("telemetry.shutdown_timeout", 5*time.Second)

	v.SetDefault("call_bridge.provider_name", ProviderVapi)
}

// splitList accepts both YAML lists and comma-separated env values.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
