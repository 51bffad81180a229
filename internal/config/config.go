package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"github.com/wb-go/wbf/zlog"
)

// Config holds the main configuration for the application.
type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Storage  Storage  `mapstructure:"storage"`
	Kafka    Kafka    `mapstructure:"kafka"`
	Retry    Retry    `mapstructure:"retry"`
	Pose     Pose     `mapstructure:"pose"`
	Export   Export   `mapstructure:"export"`
}

// Server holds HTTP server-related configuration.
type Server struct {
	HTTPPort string `mapstructure:"http_port"` // HTTP port to listen on
}

// Database holds database master and slave configuration.
type Database struct {
	Master DatabaseNode   `mapstructure:"master"`
	Slaves []DatabaseNode `mapstructure:"slaves"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DatabaseNode holds connection parameters for a single database node.
type DatabaseNode struct {
	Host    string `mapstructure:"host"`
	Port    string `mapstructure:"port"`
	User    string `mapstructure:"user"`
	Pass    string `mapstructure:"pass"`
	Name    string `mapstructure:"name"`
	SSLMode string `mapstructure:"ssl_mode"`
}

// Storage holds configuration for the object storage backend.
type Storage struct {
	Endpoint   string `mapstructure:"endpoint"`
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	BucketName string `mapstructure:"bucket_name"`
	UseSSL     bool   `mapstructure:"use_ssl"`
}

// Kafka holds configuration for the Kafka message queue.
type Kafka struct {
	GroupID string   `mapstructure:"group_id"` // Consumer group ID
	Topic   string   `mapstructure:"topic"`    // Kafka topic name
	Brokers []string `mapstructure:"brokers"`  // List of Kafka broker addresses
}

// Retry defines retry policy configuration.
type Retry struct {
	Attempts int           `mapstructure:"attempts"` // Number of retry attempts
	Delay    time.Duration `mapstructure:"delay"`    // Initial delay between retries
	Backoff  float64       `mapstructure:"backoff"`  // Backoff multiplier for delays
}

// Pose holds configuration for the external pose-detection capability.
// An empty service URL disables subject framing; staff images then get
// centered crops.
type Pose struct {
	ServiceURL string `mapstructure:"service_url"`
}

// Export holds batch export settings.
type Export struct {
	Workers  int            `mapstructure:"workers"`  // pipeline worker count, 0 = one per CPU
	Quality  float64        `mapstructure:"quality"`  // default JPEG quality factor
	Profiles []ProfileEntry `mapstructure:"profiles"` // extra catalog entries
}

// ProfileEntry extends the built-in media profile table from configuration.
type ProfileEntry struct {
	Profile  string `mapstructure:"profile"`
	Category string `mapstructure:"category"`
	Width    int    `mapstructure:"width"`
	Height   int    `mapstructure:"height"`
}

// DSN returns the PostgreSQL DSN string for connecting to this database node.
func (n DatabaseNode) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		n.User, n.Pass, n.Host, n.Port, n.Name, n.SSLMode,
	)
}

// mustBindEnv binds critical environment variables to Viper keys.
//
// It panics if any environment variable cannot be bound.
func mustBindEnv() {
	bindings := map[string]string{
		"database.master.host": "DB_HOST",
		"database.master.port": "DB_PORT",
		"database.master.user": "DB_USER",
		"database.master.pass": "DB_PASSWORD",
		"database.master.name": "DB_NAME",
		"storage.access_key":   "MINIO_ACCESS_KEY",
		"storage.secret_key":   "MINIO_SECRET_KEY",
		"pose.service_url":     "POSE_SERVICE_URL",
	}

	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			zlog.Logger.Panic().Err(err).Msgf("failed to bind env %s", env)
		}
	}
}

// MustLoad loads the configuration from the specified directory.
// It panics if the configuration file cannot be loaded or unmarshaled.
func MustLoad(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		zlog.Logger.Panic().Err(err).Msg("failed to read config")
	}

	mustBindEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		zlog.Logger.Panic().Err(err).Msgf("failed to unmarshal config: %v", err)
	}

	return &cfg
}
