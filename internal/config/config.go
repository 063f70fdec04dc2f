package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is built once at startup and treated as read-only afterwards.
type Config struct {
	HTTP      HTTPConfig
	Database  DatabaseConfig
	Keys      KeysConfig
	Log       LogConfig
	Retention RetentionConfig
	Redis     RedisConfig
	MQTT      MQTTConfig

	// Timezone is the IANA zone name device-local timestamps are
	// interpreted in. Location is the resolved zone, falling back to
	// UTC when the name is unknown.
	Timezone string
	Location *time.Location

	CORSOrigins string
	LogRequests bool
}

type HTTPConfig struct {
	Addr string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// KeysConfig holds the shared-secret API keys. An empty value means the
// tier is not configured.
type KeysConfig struct {
	Write  string
	Read   string
	Legacy string
}

type LogConfig struct {
	Level  string
	Format string
}

// RetentionConfig is days-to-keep per stream class. Zero disables the
// sweep for that class.
type RetentionConfig struct {
	DataDays     int
	SecurityDays int
	AuditDays    int
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	Stream   string
}

type MQTTConfig struct {
	Enabled  bool
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
}

// Load reads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTP: HTTPConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "homesentry"),
			Password: getEnv("DB_PASSWORD", "homesentry"),
			Database: getEnv("DB_NAME", "homesentry"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
			MaxIdle:  getEnvInt("DB_MAX_IDLE", 2),
		},
		Keys: KeysConfig{
			Write:  getEnv("API_KEY_WRITE", ""),
			Read:   getEnv("API_KEY_READ", ""),
			Legacy: getEnv("API_KEY", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Retention: RetentionConfig{
			DataDays:     getEnvInt("DATA_RETENTION_DAYS", 365),
			SecurityDays: getEnvInt("SECURITY_RETENTION_DAYS", 730),
			AuditDays:    getEnvInt("AUDIT_RETENTION_DAYS", 365),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Stream:   getEnv("REDIS_STREAM", "homesentry:events"),
		},
		MQTT: MQTTConfig{
			Enabled:  getEnvBool("MQTT_ENABLED", false),
			Broker:   getEnv("MQTT_BROKER", "tcp://localhost:1883"),
			ClientID: getEnv("MQTT_CLIENT_ID", "homesentry-data"),
			Username: getEnv("MQTT_USERNAME", ""),
			Password: getEnv("MQTT_PASSWORD", ""),
			Topic:    getEnv("MQTT_TOPIC", "homesentry/+/+"),
			QoS:      byte(getEnvInt("MQTT_QOS", 1)),
		},
		Timezone:    getEnv("TIMEZONE", "Europe/Berlin"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		LogRequests: getEnvBool("LOG_REQUESTS", false),
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
		cfg.Timezone = "UTC"
	}
	cfg.Location = loc

	return cfg
}

// GetDSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
