package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LogConfig controls the global logger.
type LogConfig struct {
	Level     string `mapstructure:"LEVEL"`
	Format    string `mapstructure:"FORMAT"`
	Component string `mapstructure:"COMPONENT"`
	Source    bool   `mapstructure:"SOURCE"`
}

// DBConfig holds MySQL connection settings. DSN wins when set.
type DBConfig struct {
	DSN      string `mapstructure:"DSN"`
	Host     string `mapstructure:"HOST"`
	Port     string `mapstructure:"PORT"`
	User     string `mapstructure:"USER"`
	Password string `mapstructure:"PASSWORD"`
	Name     string `mapstructure:"NAME"`
}

// RedisConfig holds settings for the counter cache.
type RedisConfig struct {
	Addr     string `mapstructure:"ADDR"`
	Password string `mapstructure:"PASSWORD"`
	DB       int    `mapstructure:"DB"`
}

// KafkaConfig holds settings for the event publisher.
type KafkaConfig struct {
	Brokers     []string `mapstructure:"BROKERS"`
	ClientID    string   `mapstructure:"CLIENT_ID"`
	EventsTopic string   `mapstructure:"EVENTS_TOPIC"`
	Protocol    string   `mapstructure:"PROTOCOL"`
}

// EngineConfig carries the matching engine knobs.
type EngineConfig struct {
	UndoWindow       time.Duration `mapstructure:"UNDO_WINDOW"`
	PageSize         int           `mapstructure:"PAGE_SIZE"`
	BoostFactor      float64       `mapstructure:"BOOST_FACTOR"`
	DiscoveryTimeout time.Duration `mapstructure:"DISCOVERY_TIMEOUT"`
}

// Config holds all configuration, read by viper from environment variables
// with defaults suitable for local development.
type Config struct {
	App struct {
		Name string `mapstructure:"NAME"`
		ENV  string `mapstructure:"ENV"`
	} `mapstructure:"APP"`
	Log    LogConfig    `mapstructure:"LOG"`
	DB     DBConfig     `mapstructure:"DB"`
	Redis  RedisConfig  `mapstructure:"REDIS"`
	Kafka  KafkaConfig  `mapstructure:"KAFKA"`
	Engine EngineConfig `mapstructure:"ENGINE"`
}

// New loads configuration from the environment.
func New() *Config {
	v := viper.New()

	v.SetDefault("APP.NAME", "match-engine")
	v.SetDefault("APP.ENV", "development")

	v.SetDefault("LOG.LEVEL", "info")
	v.SetDefault("LOG.FORMAT", "text")
	v.SetDefault("LOG.COMPONENT", "engine")
	v.SetDefault("LOG.SOURCE", false)

	v.SetDefault("DB.DSN", "")
	v.SetDefault("DB.HOST", "localhost")
	v.SetDefault("DB.PORT", "3306")
	v.SetDefault("DB.USER", "root")
	v.SetDefault("DB.PASSWORD", "root")
	v.SetDefault("DB.NAME", "kindled")

	v.SetDefault("REDIS.ADDR", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)

	v.SetDefault("KAFKA.BROKERS", []string{"localhost:9092"})
	v.SetDefault("KAFKA.CLIENT_ID", "match-engine")
	v.SetDefault("KAFKA.EVENTS_TOPIC", "engine.events")
	v.SetDefault("KAFKA.PROTOCOL", "plaintext")

	v.SetDefault("ENGINE.UNDO_WINDOW", 24*time.Hour)
	v.SetDefault("ENGINE.PAGE_SIZE", 25)
	v.SetDefault("ENGINE.BOOST_FACTOR", 0.5)
	v.SetDefault("ENGINE.DISCOVERY_TIMEOUT", 3*time.Second)

	// DB.HOST is overridden by DB_HOST in the environment.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		// Defaults always unmarshal; a failure here means a malformed override.
		panic(fmt.Sprintf("config: %v", err))
	}

	if cfg.DB.DSN == "" {
		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	return cfg
}
