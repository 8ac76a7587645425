package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 进程全部可调参数，来自配置文件 + SOCIAL_ 前缀环境变量
type Config struct {
	Server struct {
		Port string `mapstructure:"port"`
		Mode string `mapstructure:"mode"`
	} `mapstructure:"server"`

	Database struct {
		Driver     string `mapstructure:"driver"` // postgres | sqlite
		DSN        string `mapstructure:"dsn"`
		MaxRetries int    `mapstructure:"max_retries"` // 文档事务的版本冲突重试上限
	} `mapstructure:"database"`

	Redis struct {
		Addr     string        `mapstructure:"addr"`
		Password string        `mapstructure:"password"`
		DB       int           `mapstructure:"db"`
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"redis"`

	JWT struct {
		Secret string `mapstructure:"secret"`
	} `mapstructure:"jwt"`

	Sentry struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"sentry"`

	Tracing struct {
		Endpoint string `mapstructure:"endpoint"` // OTLP/HTTP collector，空则不启用
	} `mapstructure:"tracing"`

	Follow struct {
		IORetries int `mapstructure:"io_retries"`
	} `mapstructure:"follow"`

	RateLimit struct {
		PerSecond float64 `mapstructure:"per_second"`
		Burst     int     `mapstructure:"burst"`
	} `mapstructure:"rate_limit"`
}

// Load 读取 path 指向的配置文件；path 为空时找工作目录下的 config.yaml。
// 文件缺失不报错，走默认值 + 环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("SOCIAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "social.db")
	v.SetDefault("database.max_retries", 5)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.cache_ttl", 5*time.Minute)
	v.SetDefault("follow.io_retries", 3)
	v.SetDefault("rate_limit.per_second", 20.0)
	v.SetDefault("rate_limit.burst", 40)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
