package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Internal  InternalConfig  `mapstructure:"internal"`
	App       AppConfig       `mapstructure:"app"`
	LogLevel  string          `mapstructure:"log_level"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpiryMinutes int    `mapstructure:"expiry_minutes"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

type SchedulerConfig struct {
	// CheckInterval is the cron-style cadence of the reminder check task.
	CheckInterval string `mapstructure:"check_interval"`
	SweepInterval string `mapstructure:"sweep_interval"`
	// LookaheadMinutes sizes the candidate fetch window.
	LookaheadMinutes int `mapstructure:"lookahead_minutes"`
	// ToleranceMinutes is the slack added to the due window to absorb
	// polling drift. Keep it at or above the check interval.
	ToleranceMinutes int `mapstructure:"tolerance_minutes"`
}

type InternalConfig struct {
	// Token is the shared secret required on /internal routes.
	Token string `mapstructure:"token"`
}

type AppConfig struct {
	DashboardURL string `mapstructure:"dashboard_url"`
}

var (
	mu       sync.RWMutex
	instance *Config
)

// Load reads config.yaml (optional) and environment overrides
// (QB_SERVER_PORT, QB_DATABASE_HOST, ...) into the global config.
func Load() error {
	// .env is optional, used in development only
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("QB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	mu.Lock()
	instance = &cfg
	mu.Unlock()
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7070)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "quietblock")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.expiry_minutes", 1440)
	v.SetDefault("smtp.port", 465)
	v.SetDefault("smtp.from_name", "QuietBlock")
	v.SetDefault("scheduler.check_interval", "@every 2m")
	v.SetDefault("scheduler.sweep_interval", "@every 1m")
	v.SetDefault("scheduler.lookahead_minutes", 5)
	v.SetDefault("scheduler.tolerance_minutes", 5)
	v.SetDefault("app.dashboard_url", "http://localhost:3000/dashboard")
	v.SetDefault("log_level", "info")
}

func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// GetSafe returns the config and whether Load has run.
func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}
