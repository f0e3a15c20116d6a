package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/mero-vet/vet-clinic-app-sub000/pkg/messaging/redis"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/worker"
)

// EnvPrefix namespaces environment overrides, e.g. SCHED_SERVER_PORT.
const EnvPrefix = "sched"

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	URL          string        `mapstructure:"url"`
	Channel      string        `mapstructure:"channel"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type OutboxConfig struct {
	BatchSize     int           `mapstructure:"batch_size"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	MaxDeliveries int           `mapstructure:"max_deliveries"`
	Retention     time.Duration `mapstructure:"retention"`
	CleanupEvery  time.Duration `mapstructure:"cleanup_interval"`
}

type SMTPConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	AuditFile string `mapstructure:"audit_file"`
}

type SchedulingConfig struct {
	Timezone        string        `mapstructure:"timezone"`
	SlotGranularity int           `mapstructure:"slot_granularity_minutes"`
	SlotCacheTTL    time.Duration `mapstructure:"slot_cache_ttl"`
}

// Location resolves the clinic timezone; every absolute timestamp the engine
// derives (reminders, cancellation windows) is computed in it.
func (c SchedulingConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduling timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

type AppointmentTypeConfig struct {
	ID                 string   `mapstructure:"id"`
	Name               string   `mapstructure:"name"`
	Duration           int      `mapstructure:"duration"`
	Buffer             int      `mapstructure:"buffer"`
	RequiredResources  []string `mapstructure:"required_resources"`
	Color              string   `mapstructure:"color"`
	PriceMin           float64  `mapstructure:"price_min"`
	PriceMax           float64  `mapstructure:"price_max"`
	RequiresPreAuth    bool     `mapstructure:"requires_pre_auth"`
	RequiresPrivacy    bool     `mapstructure:"requires_privacy"`
	Priority           string   `mapstructure:"priority"`
	AllowDoubleBooking bool     `mapstructure:"allow_double_booking"`
}

// HoursConfig uses HH:MM strings.
type HoursConfig struct {
	Open   string `mapstructure:"open"`
	Close  string `mapstructure:"close"`
	Closed bool   `mapstructure:"closed"`
}

type RulesConfig struct {
	LunchStart              string   `mapstructure:"lunch_start"`
	LunchEnd                string   `mapstructure:"lunch_end"`
	LunchAppliesTo          []string `mapstructure:"lunch_applies_to"`
	AdvanceBookingDays      int      `mapstructure:"advance_booking_days"`
	SameDayCutoff           string   `mapstructure:"same_day_cutoff"`
	CancellationWindowHours int      `mapstructure:"cancellation_window_hours"`
	NoShowLimit             int      `mapstructure:"no_show_limit"`
	EmergencySlotReserve    int      `mapstructure:"emergency_slot_reserve"`
}

type ReminderRuleConfig struct {
	DaysBefore int    `mapstructure:"days_before"`
	Method     string `mapstructure:"method"`
	Message    string `mapstructure:"message"`
}

type ReminderSetConfig struct {
	AppointmentType string               `mapstructure:"appointment_type"`
	Rules           []ReminderRuleConfig `mapstructure:"rules"`
}

// CatalogConfig is the static clinic configuration. Any empty section falls
// back to the built-in veterinary defaults.
type CatalogConfig struct {
	AppointmentTypes []AppointmentTypeConfig `mapstructure:"appointment_types"`
	BusinessHours    map[string]HoursConfig  `mapstructure:"business_hours"`
	Rules            *RulesConfig            `mapstructure:"rules"`
	Reminders        []ReminderSetConfig     `mapstructure:"reminders"`
	DefaultReminders []ReminderRuleConfig    `mapstructure:"default_reminders"`
}

type ProviderConfig struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
	Kind string `mapstructure:"kind"`
}

type RoomConfig struct {
	ID             string   `mapstructure:"id"`
	Name           string   `mapstructure:"name"`
	Kind           string   `mapstructure:"kind"`
	SupportedTypes []string `mapstructure:"supported_types"`
	Equipment      []string `mapstructure:"equipment"`
	Floor          int      `mapstructure:"floor"`
}

type ResourcesConfig struct {
	Providers []ProviderConfig `mapstructure:"providers"`
	Rooms     []RoomConfig     `mapstructure:"rooms"`
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Outbox     OutboxConfig     `mapstructure:"outbox"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Resources  ResourcesConfig  `mapstructure:"resources"`
}

// envOverrides are read with envconfig after the file so deployments can
// change connection settings without editing YAML.
type envOverrides struct {
	ServerPort   int    `envconfig:"SERVER_PORT"`
	RedisURL     string `envconfig:"REDIS_URL"`
	DBHost       string `envconfig:"DB_HOST"`
	DBPort       int    `envconfig:"DB_PORT"`
	DBPassword   string `envconfig:"DB_PASSWORD"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	Timezone     string `envconfig:"TIMEZONE"`
	LogLevel     string `envconfig:"LOG_LEVEL"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.channel", "scheduling.events")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("outbox.poll_interval", 2*time.Second)
	v.SetDefault("outbox.retry_attempts", 3)
	v.SetDefault("outbox.retry_delay", time.Second)
	v.SetDefault("outbox.max_deliveries", 5)
	v.SetDefault("outbox.retention", 7*24*time.Hour)
	v.SetDefault("outbox.cleanup_interval", time.Hour)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("rate_limit.requests_per_second", 50.0)
	v.SetDefault("rate_limit.burst", 100)
	v.SetDefault("logging.level", "info")
	v.SetDefault("scheduling.timezone", "UTC")
	v.SetDefault("scheduling.slot_granularity_minutes", 15)
	v.SetDefault("scheduling.slot_cache_ttl", 5*time.Minute)
}

// LoadConfig searches the usual locations for config.yml.
func LoadConfig() (*Config, error) {
	return Load("")
}

// Load reads the config file at path, or searches ., ./config and
// /app/config when path is empty. A missing file is not an error: defaults
// and the built-in catalog apply.
func Load(path string) (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app/config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to process environment: %w", err)
	}

	if env.ServerPort != 0 {
		cfg.Server.Port = env.ServerPort
	}
	if env.RedisURL != "" {
		cfg.Redis.URL = env.RedisURL
	}
	if env.DBHost != "" {
		cfg.Database.Host = env.DBHost
	}
	if env.DBPort != 0 {
		cfg.Database.Port = env.DBPort
	}
	if env.DBPassword != "" {
		cfg.Database.Password = env.DBPassword
	}
	if env.SMTPPassword != "" {
		cfg.SMTP.Password = env.SMTPPassword
	}
	if env.Timezone != "" {
		cfg.Scheduling.Timezone = env.Timezone
	}
	if env.LogLevel != "" {
		cfg.Logging.Level = env.LogLevel
	}
	return nil
}

// ToWorkerConfig relays events onto the configured Redis channel.
func (c *Config) ToWorkerConfig() worker.OutboxProcessorConfig {
	return worker.OutboxProcessorConfig{
		Channel:       c.Redis.Channel,
		BatchSize:     c.Outbox.BatchSize,
		PollInterval:  c.Outbox.PollInterval,
		RetryAttempts: c.Outbox.RetryAttempts,
		RetryDelay:    c.Outbox.RetryDelay,
		MaxDeliveries: c.Outbox.MaxDeliveries,
	}
}

func (c *RedisConfig) ToBrokerConfig() redis.Config {
	return redis.Config{
		URL:          c.URL,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
	}
}
