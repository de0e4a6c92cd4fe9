package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/thushan/redis-watcher/internal/core/domain"
)

const (
	DefaultPort      = 19851
	DefaultHost      = "localhost"
	DefaultRedisPort = 6379

	EnvPrefix     = "REDIS_WATCHER"
	EnvConfigFile = "REDIS_WATCHER_CONFIG_FILE"

	redacted = "********"
)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			Interval:       10 * time.Second,
			ConnectTimeout: 3 * time.Second,
		},
		Redis: RedisConfig{
			Host: "127.0.0.1",
			Port: DefaultRedisPort,
		},
		SMS: SMSConfig{
			Endpoint:  "dysmsapi.aliyuncs.com",
			Algorithm: "ACS3-HMAC-SHA256",
		},
		Services: ServicesConfig{
			Socket:         "/var/run/docker.sock",
			APIURL:         "http://localhost",
			Targets:        []string{},
			RequestTimeout: 10 * time.Second,
		},
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogDir:     "./logs",
			Theme:      "default",
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
		},
	}
}

// Load reads configFile if given, else the file named by
// REDIS_WATCHER_CONFIG_FILE, else config.yaml from . or ./config. A missing
// config.yaml is fine, defaults and environment variables still apply.
func Load(configFile string) (*Config, error) {
	config := DefaultConfig()

	v := viper.New()
	setDefaults(v, config)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		configFile = os.Getenv(EnvConfigFile)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	config.Filename = v.ConfigFileUsed()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// setDefaults registers every key with viper, AutomaticEnv only overrides
// keys viper already knows about
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("general.interval", c.General.Interval)
	v.SetDefault("general.connect_timeout", c.General.ConnectTimeout)

	v.SetDefault("redis.host", c.Redis.Host)
	v.SetDefault("redis.port", c.Redis.Port)
	v.SetDefault("redis.auth", c.Redis.Auth)
	v.SetDefault("redis.username", c.Redis.Username)
	v.SetDefault("redis.password", c.Redis.Password)

	v.SetDefault("email.enabled", c.Email.Enabled)
	v.SetDefault("email.smtp_url", c.Email.SMTPURL)
	v.SetDefault("email.smtp_tls", c.Email.SMTPTLS)
	v.SetDefault("email.smtp_user", c.Email.SMTPUser)
	v.SetDefault("email.smtp_password", c.Email.SMTPPassword)
	v.SetDefault("email.sender", c.Email.Sender)
	v.SetDefault("email.receiver", c.Email.Receiver)

	v.SetDefault("sms.enabled", c.SMS.Enabled)
	v.SetDefault("sms.mobile", c.SMS.Mobile)
	v.SetDefault("sms.endpoint", c.SMS.Endpoint)
	v.SetDefault("sms.key", c.SMS.Key)
	v.SetDefault("sms.secret", c.SMS.Secret)
	v.SetDefault("sms.algorithm", c.SMS.Algorithm)

	v.SetDefault("services.targets", c.Services.Targets)
	v.SetDefault("services.socket", c.Services.Socket)
	v.SetDefault("services.api_url", c.Services.APIURL)
	v.SetDefault("services.request_timeout", c.Services.RequestTimeout)
	v.SetDefault("services.requests_per_second", c.Services.RequestsPerSecond)
	v.SetDefault("services.create_missing_counter", c.Services.CreateMissingCounter)

	v.SetDefault("server.enabled", c.Server.Enabled)
	v.SetDefault("server.host", c.Server.Host)
	v.SetDefault("server.port", c.Server.Port)
	v.SetDefault("server.read_timeout", c.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", c.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)

	v.SetDefault("logging.level", c.Logging.Level)
	v.SetDefault("logging.file_output", c.Logging.FileOutput)
	v.SetDefault("logging.log_dir", c.Logging.LogDir)
	v.SetDefault("logging.max_size", c.Logging.MaxSize)
	v.SetDefault("logging.max_backups", c.Logging.MaxBackups)
	v.SetDefault("logging.max_age", c.Logging.MaxAge)
	v.SetDefault("logging.theme", c.Logging.Theme)
}

// Validate reports every problem at once rather than stopping at the first
func (c *Config) Validate() error {
	var err error

	if c.General.Interval <= 0 {
		err = multierr.Append(err, domain.NewConfigValidationError("general.interval", c.General.Interval, "must be positive"))
	}
	if c.General.ConnectTimeout <= 0 {
		err = multierr.Append(err, domain.NewConfigValidationError("general.connect_timeout", c.General.ConnectTimeout, "must be positive"))
	}

	if strings.TrimSpace(c.Redis.Host) == "" {
		err = multierr.Append(err, domain.NewConfigValidationError("redis.host", c.Redis.Host, "is required"))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		err = multierr.Append(err, domain.NewConfigValidationError("redis.port", c.Redis.Port, "must be between 1 and 65535"))
	}
	if c.Redis.Auth && c.Redis.Password == "" {
		err = multierr.Append(err, domain.NewConfigValidationError("redis.password", redacted, "is required when auth is enabled"))
	}

	if c.Email.Enabled {
		err = multierr.Append(err, requireFields("email", map[string]string{
			"smtp_url": c.Email.SMTPURL,
			"sender":   c.Email.Sender,
			"receiver": c.Email.Receiver,
		}))
	}
	if c.SMS.Enabled {
		err = multierr.Append(err, requireFields("sms", map[string]string{
			"mobile":   c.SMS.Mobile,
			"endpoint": c.SMS.Endpoint,
			"key":      c.SMS.Key,
			"secret":   c.SMS.Secret,
		}))
	}

	for i, target := range c.Services.Targets {
		field := fmt.Sprintf("services.targets[%d]", i)
		if strings.TrimSpace(target) == "" {
			err = multierr.Append(err, domain.NewConfigValidationError(field, target, "must not be empty"))
			continue
		}
		if domain.ValidateWorkloadID(target) != nil {
			err = multierr.Append(err, domain.NewConfigValidationError(field, target, "must be a service id or name"))
		}
	}
	if c.Services.RequestTimeout <= 0 {
		err = multierr.Append(err, domain.NewConfigValidationError("services.request_timeout", c.Services.RequestTimeout, "must be positive"))
	}
	if c.Services.RequestsPerSecond < 0 {
		err = multierr.Append(err, domain.NewConfigValidationError("services.requests_per_second", c.Services.RequestsPerSecond, "must not be negative"))
	}

	if c.Server.Enabled && (c.Server.Port < 1 || c.Server.Port > 65535) {
		err = multierr.Append(err, domain.NewConfigValidationError("server.port", c.Server.Port, "must be between 1 and 65535"))
	}

	return err
}

func requireFields(section string, fields map[string]string) error {
	var err error
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		if strings.TrimSpace(fields[name]) == "" {
			err = multierr.Append(err, domain.NewConfigValidationError(section+"."+name, "", "is required when "+section+" is enabled"))
		}
	}
	return err
}

// Redacted returns a copy safe to print, secrets are masked
func (c *Config) Redacted() *Config {
	out := *c
	out.Services.Targets = append([]string(nil), c.Services.Targets...)
	if out.Redis.Password != "" {
		out.Redis.Password = redacted
	}
	if out.Email.SMTPPassword != "" {
		out.Email.SMTPPassword = redacted
	}
	if out.SMS.Secret != "" {
		out.SMS.Secret = redacted
	}
	if out.SMS.Key != "" {
		out.SMS.Key = redacted
	}
	return &out
}
