package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config holds all configuration for the watcher
type Config struct {
	Filename string         `yaml:"-" mapstructure:"-"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
	Redis    RedisConfig    `yaml:"redis" mapstructure:"redis"`
	Email    EmailConfig    `yaml:"email" mapstructure:"email"`
	SMS      SMSConfig      `yaml:"sms" mapstructure:"sms"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Services ServicesConfig `yaml:"services" mapstructure:"services"`
	General  GeneralConfig  `yaml:"general" mapstructure:"general"`
}

type GeneralConfig struct {
	Interval       time.Duration `yaml:"interval" mapstructure:"interval"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout"`
}

// RedisConfig describes the monitored store. Username is optional, an empty
// one sends the legacy single argument AUTH.
type RedisConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Auth     bool   `yaml:"auth" mapstructure:"auth"`
}

func (r *RedisConfig) GetAddress() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

type EmailConfig struct {
	SMTPURL      string `yaml:"smtp_url" mapstructure:"smtp_url"`
	SMTPUser     string `yaml:"smtp_user" mapstructure:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password" mapstructure:"smtp_password"`
	Sender       string `yaml:"sender" mapstructure:"sender"`
	Receiver     string `yaml:"receiver" mapstructure:"receiver"`
	Enabled      bool   `yaml:"enabled" mapstructure:"enabled"`
	SMTPTLS      bool   `yaml:"smtp_tls" mapstructure:"smtp_tls"`
}

type SMSConfig struct {
	Mobile    string `yaml:"mobile" mapstructure:"mobile"`
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"`
	Key       string `yaml:"key" mapstructure:"key"`
	Secret    string `yaml:"secret" mapstructure:"secret"`
	Algorithm string `yaml:"algorithm" mapstructure:"algorithm"`
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
}

// ServicesConfig lists the swarm services restarted after an outage and how
// to reach the engine that runs them
type ServicesConfig struct {
	Socket               string        `yaml:"socket" mapstructure:"socket"`
	APIURL               string        `yaml:"api_url" mapstructure:"api_url"`
	Targets              []string      `yaml:"targets" mapstructure:"targets"`
	RequestTimeout       time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	RequestsPerSecond    float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	CreateMissingCounter bool          `yaml:"create_missing_counter" mapstructure:"create_missing_counter"`
}

// ServerConfig holds the status/metrics HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" mapstructure:"host"`
	Port            int           `yaml:"port" mapstructure:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
}

// GetAddress returns the server address in host:port format
func (s *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LoggingConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	LogDir     string `yaml:"log_dir" mapstructure:"log_dir"`
	Theme      string `yaml:"theme" mapstructure:"theme"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`
	FileOutput bool   `yaml:"file_output" mapstructure:"file_output"`
}
