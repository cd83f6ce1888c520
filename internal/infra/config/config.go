package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	HTTP      HTTPSettings      `mapstructure:"http"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Cache     CacheSettings     `mapstructure:"cache"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	JWT       JWTSettings       `mapstructure:"jwt"`
	Storage   StorageSettings   `mapstructure:"storage"`
	Telemetry TelemetrySettings `mapstructure:"telemetry"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	Argon2    Argon2Settings    `mapstructure:"argon2"`
	Password  PasswordSettings  `mapstructure:"password"`
	CORS      CORSSettings      `mapstructure:"cors"`
}

type AppSettings struct {
	Name      string `mapstructure:"name"`
	Env       string `mapstructure:"env"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	PublicURL string `mapstructure:"public_url"`
}

// HTTPSettings bounds the HTTP server lifecycle.
type HTTPSettings struct {
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
	AutoMigrate       bool          `mapstructure:"auto_migrate"`
}

// RedisSettings configures Redis connection and TLS
type RedisSettings struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	DB         int    `mapstructure:"db"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
}

// CacheSettings configures session and contact query entry lifetimes.
type CacheSettings struct {
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	QueryTTL   time.Duration `mapstructure:"query_ttl"`
}

// KafkaSettings configures the event producer
type KafkaSettings struct {
	Enabled     bool     `mapstructure:"enabled"`
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
	ClientID    string   `mapstructure:"client_id"`
}

// JWTSettings configures symmetric token signing.
type JWTSettings struct {
	SecretKey       string        `mapstructure:"secret_key"`
	Algorithm       string        `mapstructure:"algorithm"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

// StorageSettings configures the S3 compatible avatar bucket.
type StorageSettings struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
	Folder          string `mapstructure:"folder"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

type TelemetrySettings struct {
	TracingEnabled bool    `mapstructure:"tracing_enabled"`
	OTLPEndpoint   string  `mapstructure:"otlp_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
}

// RateLimitSettings configures the sliding windows guarding contact and avatar routes.
type RateLimitSettings struct {
	Enabled             bool          `mapstructure:"enabled"`
	ContactsWindow      time.Duration `mapstructure:"contacts_window"`
	ContactsMaxRequests int           `mapstructure:"contacts_max_requests"`
	AvatarWindow        time.Duration `mapstructure:"avatar_window"`
	AvatarMaxRequests   int           `mapstructure:"avatar_max_requests"`
}

// Argon2Settings configures Argon2id password hashing parameters
type Argon2Settings struct {
	Memory      uint32 `mapstructure:"memory"`
	Iterations  uint32 `mapstructure:"iterations"`
	Parallelism uint8  `mapstructure:"parallelism"`
	SaltLength  uint32 `mapstructure:"salt_length"`
	KeyLength   uint32 `mapstructure:"key_length"`
}

// PasswordSettings configures the signup password policy.
type PasswordSettings struct {
	MinLength   int `mapstructure:"min_length"`
	MaxLength   int `mapstructure:"max_length"`
	MinStrength int `mapstructure:"min_strength"`
}

type CORSSettings struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

var (
	// ErrMissingSecret is returned when no JWT signing secret is configured.
	ErrMissingSecret = errors.New("jwt secret key is required")
	// ErrUnsupportedAlgorithm is returned for non-HMAC signing algorithms.
	ErrUnsupportedAlgorithm = errors.New("jwt algorithm must be HS256, HS384 or HS512")
)

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("CONTACTS")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"app.public_url",
		"http.read_timeout",
		"http.write_timeout",
		"http.idle_timeout",
		"http.shutdown_timeout",
		"http.max_upload_bytes",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"postgres.auto_migrate",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"cache.session_ttl",
		"cache.query_ttl",
		"kafka.enabled",
		"kafka.brokers",
		"kafka.topic_prefix",
		"kafka.client_id",
		"jwt.secret_key",
		"jwt.algorithm",
		"jwt.access_token_ttl",
		"jwt.refresh_token_ttl",
		"storage.enabled",
		"storage.endpoint",
		"storage.region",
		"storage.bucket",
		"storage.access_key_id",
		"storage.secret_access_key",
		"storage.public_base_url",
		"storage.folder",
		"storage.use_path_style",
		"telemetry.tracing_enabled",
		"telemetry.otlp_endpoint",
		"telemetry.service_name",
		"telemetry.sampling_rate",
		"rate_limit.enabled",
		"rate_limit.contacts_window",
		"rate_limit.contacts_max_requests",
		"rate_limit.avatar_window",
		"rate_limit.avatar_max_requests",
		"argon2.memory",
		"argon2.iterations",
		"argon2.parallelism",
		"argon2.salt_length",
		"argon2.key_length",
		"password.min_length",
		"password.max_length",
		"password.min_strength",
		"cors.allowed_origins",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.JWT.SecretKey) == "" {
		return ErrMissingSecret
	}
	switch strings.ToUpper(c.JWT.Algorithm) {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("%w: got %q", ErrUnsupportedAlgorithm, c.JWT.Algorithm)
	}
	if c.Cache.SessionTTL <= 0 || c.Cache.QueryTTL <= 0 {
		return fmt.Errorf("cache ttl must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "contacts-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8000)
	v.SetDefault("app.public_url", "http://localhost:8000")

	v.SetDefault("http.read_timeout", "15s")
	v.SetDefault("http.write_timeout", "15s")
	v.SetDefault("http.idle_timeout", "60s")
	v.SetDefault("http.shutdown_timeout", "10s")
	v.SetDefault("http.max_upload_bytes", 5<<20)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.database", "contacts")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")
	v.SetDefault("postgres.auto_migrate", true)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)

	v.SetDefault("cache.session_ttl", "900s")
	v.SetDefault("cache.query_ttl", "60s")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic_prefix", "contacts")
	v.SetDefault("kafka.client_id", "contacts-api")

	v.SetDefault("jwt.secret_key", "")
	v.SetDefault("jwt.algorithm", "HS256")
	v.SetDefault("jwt.access_token_ttl", "30m")
	v.SetDefault("jwt.refresh_token_ttl", "168h")

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.region", "auto")
	v.SetDefault("storage.bucket", "avatars")
	v.SetDefault("storage.folder", "avatars")
	v.SetDefault("storage.use_path_style", true)

	v.SetDefault("telemetry.tracing_enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4318")
	v.SetDefault("telemetry.service_name", "contacts-service")
	v.SetDefault("telemetry.sampling_rate", 1.0)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.contacts_window", "20s")
	v.SetDefault("rate_limit.contacts_max_requests", 3)
	v.SetDefault("rate_limit.avatar_window", "20s")
	v.SetDefault("rate_limit.avatar_max_requests", 1)

	v.SetDefault("argon2.memory", 65536) // 64 MB
	v.SetDefault("argon2.iterations", 3)
	v.SetDefault("argon2.parallelism", 4)
	v.SetDefault("argon2.salt_length", 16)
	v.SetDefault("argon2.key_length", 32)

	v.SetDefault("password.min_length", 6)
	v.SetDefault("password.max_length", 15)
	v.SetDefault("password.min_strength", 1)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost", "http://localhost:3000"})
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "CONTACTS_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
