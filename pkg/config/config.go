package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	App      AppConfig
	Outreach OutreachConfig
	Channels ChannelsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level  string
	Format string // json or text
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Environment string
	Version     string
	Name        string
}

// OutreachConfig holds workflow dispatch and idle sweep configuration
type OutreachConfig struct {
	DispatchCron      string
	DispatchBatchSize int
	DispatchSecret    string
	SweepLockTTL      time.Duration
	IdleThreshold     time.Duration
	IdleSweepInterval time.Duration
	IdleBatchSize     int
}

// ChannelsConfig holds message delivery channel configuration
type ChannelsConfig struct {
	Email EmailConfig
	Line  LineConfig
	SMS   SMSConfig
}

// EmailConfig holds SMTP delivery configuration
type EmailConfig struct {
	Enabled      bool
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	FromAddress  string
	FromName     string
}

// LineConfig holds LINE Messaging API configuration
type LineConfig struct {
	Enabled            bool
	APIEndpoint        string
	ChannelAccessToken string
	Timeout            time.Duration
}

// SMSConfig holds SMS gateway configuration
type SMSConfig struct {
	Enabled     bool
	APIEndpoint string
	APIKey      string
	FromNumber  string
	Timeout     time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Database:        getEnv("DB_NAME", "outreach"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "0.1.0"),
			Name:        getEnv("APP_NAME", "rental-crm-outreach"),
		},
		Outreach: OutreachConfig{
			DispatchCron:      getEnv("OUTREACH_DISPATCH_CRON", "*/5 * * * *"),
			DispatchBatchSize: getEnvAsInt("OUTREACH_DISPATCH_BATCH_SIZE", 100),
			DispatchSecret:    getEnv("OUTREACH_DISPATCH_SECRET", ""),
			SweepLockTTL:      getEnvAsDuration("OUTREACH_SWEEP_LOCK_TTL", 4*time.Minute),
			IdleThreshold:     getEnvAsDuration("OUTREACH_IDLE_THRESHOLD", 72*time.Hour),
			IdleSweepInterval: getEnvAsDuration("OUTREACH_IDLE_SWEEP_INTERVAL", time.Hour),
			IdleBatchSize:     getEnvAsInt("OUTREACH_IDLE_BATCH_SIZE", 200),
		},
		Channels: ChannelsConfig{
			Email: EmailConfig{
				Enabled:      getEnvAsBool("CHANNEL_EMAIL_ENABLED", false),
				SMTPHost:     getEnv("CHANNEL_SMTP_HOST", "localhost"),
				SMTPPort:     getEnvAsInt("CHANNEL_SMTP_PORT", 587),
				SMTPUser:     getEnv("CHANNEL_SMTP_USER", ""),
				SMTPPassword: getEnv("CHANNEL_SMTP_PASSWORD", ""),
				FromAddress:  getEnv("CHANNEL_EMAIL_FROM_ADDRESS", "noreply@example.com"),
				FromName:     getEnv("CHANNEL_EMAIL_FROM_NAME", ""),
			},
			Line: LineConfig{
				Enabled:            getEnvAsBool("CHANNEL_LINE_ENABLED", false),
				APIEndpoint:        getEnv("CHANNEL_LINE_API_ENDPOINT", "https://api.line.me/v2/bot/message/push"),
				ChannelAccessToken: getEnv("CHANNEL_LINE_ACCESS_TOKEN", ""),
				Timeout:            getEnvAsDuration("CHANNEL_LINE_TIMEOUT", 10*time.Second),
			},
			SMS: SMSConfig{
				Enabled:     getEnvAsBool("CHANNEL_SMS_ENABLED", false),
				APIEndpoint: getEnv("CHANNEL_SMS_API_ENDPOINT", ""),
				APIKey:      getEnv("CHANNEL_SMS_API_KEY", ""),
				FromNumber:  getEnv("CHANNEL_SMS_FROM_NUMBER", ""),
				Timeout:     getEnvAsDuration("CHANNEL_SMS_TIMEOUT", 10*time.Second),
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Redis.Host == "" {
		return fmt.Errorf("redis host is required")
	}

	if c.Outreach.DispatchBatchSize <= 0 {
		return fmt.Errorf("invalid dispatch batch size: %d", c.Outreach.DispatchBatchSize)
	}

	if c.Outreach.IdleThreshold <= 0 {
		return fmt.Errorf("invalid idle threshold: %s", c.Outreach.IdleThreshold)
	}

	if c.Channels.Email.Enabled && c.Channels.Email.SMTPHost == "" {
		return fmt.Errorf("smtp host is required when email channel is enabled")
	}

	if c.Channels.Line.Enabled && c.Channels.Line.ChannelAccessToken == "" {
		return fmt.Errorf("line access token is required when line channel is enabled")
	}

	if c.Channels.SMS.Enabled && c.Channels.SMS.APIEndpoint == "" {
		return fmt.Errorf("sms api endpoint is required when sms channel is enabled")
	}

	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
