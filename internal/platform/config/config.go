package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
	Markers   MarkersConfig   `yaml:"markers"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Employees EmployeesConfig `yaml:"employees"`
}

// ServerConfig は gRPC サーバーとメトリクス公開に関する設定です。
type ServerConfig struct {
	ListenAddr  string `yaml:"listen_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// LoggingConfig は zap ロガーの設定です。
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Marker の保存先です。
const (
	MarkerBackendPostgres = "postgres"
	MarkerBackendRedis    = "redis"
	MarkerBackendMemory   = "memory"
)

// MarkersConfig は日次通知や自動帳票の実行済みマーカーの保存先設定です。
type MarkersConfig struct {
	Backend string      `yaml:"backend"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig は Redis 接続設定です。
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// SchedulerConfig は週次自動帳票の設定です。
type SchedulerConfig struct {
	Enabled         bool          `yaml:"enabled"`
	PollInterval    time.Duration `yaml:"-"`
	PollIntervalRaw string        `yaml:"poll_interval"`
	ReportDir       string        `yaml:"report_dir"`
}

// EmployeesConfig は従業員ルールの設定です。
type EmployeesConfig struct {
	RehireRule string `yaml:"rehire_rule"`
}

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	db := &c.Database
	if err := db.validateAndNormalize(); err != nil {
		return err
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	if err := c.Markers.validateAndNormalize(); err != nil {
		return err
	}

	if err := c.Scheduler.validateAndNormalize(); err != nil {
		return err
	}

	switch c.Employees.RehireRule {
	case "":
		c.Employees.RehireRule = "calendar"
	case "calendar", "days":
	default:
		return fmt.Errorf("config: employees.rehire_rule must be calendar or days, got %q", c.Employees.RehireRule)
	}

	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func (m *MarkersConfig) validateAndNormalize() error {
	switch m.Backend {
	case "":
		m.Backend = MarkerBackendPostgres
	case MarkerBackendPostgres, MarkerBackendMemory:
	case MarkerBackendRedis:
		if m.Redis.Addr == "" {
			return fmt.Errorf("config: markers.redis.addr must be set for the redis backend")
		}
	default:
		return fmt.Errorf("config: markers.backend %q is not supported", m.Backend)
	}
	if m.Redis.KeyPrefix == "" {
		m.Redis.KeyPrefix = "isg:"
	}
	return nil
}

func (s *SchedulerConfig) validateAndNormalize() error {
	interval, err := parseDurationAllowEmpty(s.PollIntervalRaw)
	if err != nil {
		return fmt.Errorf("config: scheduler.poll_interval: %w", err)
	}
	if interval == 0 {
		interval = 30 * time.Second
	}
	s.PollInterval = interval

	if s.ReportDir == "" {
		s.ReportDir = "reports"
	}
	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。認証情報はエスケープされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + strconv.Itoa(d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}
