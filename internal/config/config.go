package config

import (
	"bytes"
	"fmt"
	"net"
	neturl "net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 8000
	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 5432
	defaultDBUser     = "postgres"
	defaultDBPassword = "password"
	defaultDBName     = "newsletter"
	defaultDBSSLMode  = "disable"
	defaultRedisHost  = "localhost"
	defaultRedisPort  = 6379
	defaultRedisDB    = 0
)

// AppConfig holds startup configuration loaded from YAML. Settings that an
// operator may change at runtime live in FullConfig instead.
type AppConfig struct {
	Port           int                   `yaml:"port"`
	Env            string                `yaml:"env"` // "development" | "production"
	DSN            string                `yaml:"dsn"` // Postgres DSN, assembled from Database when empty
	RedisURL       string                `yaml:"redis_url"`
	Database       DatabaseRuntimeConfig `yaml:"database"`
	Redis          RedisRuntimeConfig    `yaml:"redis"`
	Paths          RuntimePathsConfig    `yaml:"paths"`
	AllowedOrigins []string              `yaml:"allowed_origins"`
	JWTSecret      string                `yaml:"jwt_secret"`
	Timezone       string                `yaml:"timezone"`
	Jobs           JobsRuntimeConfig     `yaml:"jobs"`
}

type DatabaseRuntimeConfig struct {
	DSN      string            `yaml:"dsn"`
	URL      string            `yaml:"url"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	User     string            `yaml:"user"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	Name     string            `yaml:"name"`
	DBName   string            `yaml:"db_name"`
	SSLMode  string            `yaml:"sslmode"`
	Params   map[string]string `yaml:"params"`
}

type RedisRuntimeConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TLS      bool   `yaml:"tls"`
}

type RuntimePathsConfig struct {
	Logs string `yaml:"logs"`
}

type JobsRuntimeConfig struct {
	Enable bool `yaml:"enable"`
}

type rawAppConfig struct {
	Port           int               `yaml:"port"`
	Env            string            `yaml:"env"`
	DSN            string            `yaml:"dsn"`
	DatabaseURL    string            `yaml:"database_url"`
	RedisURL       string            `yaml:"redis_url"`
	Database       rawDatabaseConfig `yaml:"database"`
	Redis          rawRedisConfig    `yaml:"redis"`
	Paths          rawPathsConfig    `yaml:"paths"`
	AllowedOrigins []string          `yaml:"allowed_origins"`
	JWTSecret      string            `yaml:"jwt_secret"`
	Timezone       string            `yaml:"timezone"`
	Jobs           rawJobsConfig     `yaml:"jobs"`
}

type rawDatabaseConfig struct {
	DSN      string            `yaml:"dsn"`
	URL      string            `yaml:"url"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	User     string            `yaml:"user"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	Name     string            `yaml:"name"`
	DBName   string            `yaml:"db_name"`
	SSLMode  string            `yaml:"sslmode"`
	Params   map[string]string `yaml:"params"`
}

type rawRedisConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       *int   `yaml:"db"`
	TLS      *bool  `yaml:"tls"`
}

type rawPathsConfig struct {
	Logs string `yaml:"logs"`
}

type rawJobsConfig struct {
	Enable *bool `yaml:"enable"`
}

// Load reads and validates the YAML config at configPath. Unknown keys are
// rejected so typos fail at startup instead of silently falling back to defaults.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	cfg := defaultAppConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	raw := rawAppConfig{}
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}

	applyRawAppConfig(&cfg, raw)
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d in %q, expected 1-65535", cfg.Port, path)
	}
	if cfg.Database.Port < 1 || cfg.Database.Port > 65535 {
		return nil, fmt.Errorf("invalid database.port %d in %q, expected 1-65535", cfg.Database.Port, path)
	}
	if cfg.Redis.Port < 1 || cfg.Redis.Port > 65535 {
		return nil, fmt.Errorf("invalid redis.port %d in %q, expected 1-65535", cfg.Redis.Port, path)
	}
	if cfg.Redis.DB < 0 {
		return nil, fmt.Errorf("invalid redis.db %d in %q, expected >= 0", cfg.Redis.DB, path)
	}

	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	cfg := AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Database: DatabaseRuntimeConfig{
			Host:     defaultDBHost,
			Port:     defaultDBPort,
			User:     defaultDBUser,
			Password: defaultDBPassword,
			Name:     defaultDBName,
			SSLMode:  defaultDBSSLMode,
		},
		Redis: RedisRuntimeConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
			DB:   defaultRedisDB,
		},
		Jobs: JobsRuntimeConfig{Enable: true},
	}
	cfg.DSN = cfg.Database.DSNValue()
	cfg.RedisURL = cfg.Redis.URLValue()
	return cfg
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}

	if v := strings.TrimSpace(raw.Database.Host); v != "" {
		cfg.Database.Host = v
	}
	if raw.Database.Port != 0 {
		cfg.Database.Port = raw.Database.Port
	}
	if v := firstNonEmpty(raw.Database.User, raw.Database.Username); v != "" {
		cfg.Database.User = v
	}
	if v := strings.TrimSpace(raw.Database.Password); v != "" {
		cfg.Database.Password = v
	}
	if v := firstNonEmpty(raw.Database.Name, raw.Database.DBName); v != "" {
		cfg.Database.Name = v
	}
	if v := strings.TrimSpace(raw.Database.SSLMode); v != "" {
		cfg.Database.SSLMode = v
	}
	if len(raw.Database.Params) > 0 {
		cfg.Database.Params = copyStringMap(raw.Database.Params)
	}
	// Explicit DSNs win over assembled ones, most specific first.
	if v := firstNonEmpty(raw.Database.DSN, raw.Database.URL, raw.DSN, raw.DatabaseURL); v != "" {
		cfg.Database.DSN = v
	}
	cfg.DSN = cfg.Database.DSNValue()

	if v := strings.TrimSpace(raw.Redis.Host); v != "" {
		cfg.Redis.Host = v
	}
	if raw.Redis.Port != 0 {
		cfg.Redis.Port = raw.Redis.Port
	}
	if v := strings.TrimSpace(raw.Redis.Username); v != "" {
		cfg.Redis.Username = v
	}
	if v := strings.TrimSpace(raw.Redis.Password); v != "" {
		cfg.Redis.Password = v
	}
	if raw.Redis.DB != nil {
		cfg.Redis.DB = *raw.Redis.DB
	}
	if raw.Redis.TLS != nil {
		cfg.Redis.TLS = *raw.Redis.TLS
	}
	if v := firstNonEmpty(raw.Redis.URL, raw.RedisURL); v != "" {
		cfg.Redis.URL = v
	}
	cfg.RedisURL = cfg.Redis.URLValue()

	if v := strings.TrimSpace(raw.Paths.Logs); v != "" {
		cfg.Paths.Logs = v
	}
	if len(raw.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = normalizeStringSlice(raw.AllowedOrigins)
	}
	if v := strings.TrimSpace(raw.JWTSecret); v != "" {
		cfg.JWTSecret = v
	}
	if v := strings.TrimSpace(raw.Timezone); v != "" {
		cfg.Timezone = v
	}
	if raw.Jobs.Enable != nil {
		cfg.Jobs.Enable = *raw.Jobs.Enable
	}
}

// DSNValue assembles a keyword/value Postgres DSN unless an explicit DSN or URL
// was configured, in which case that wins untouched.
func (c DatabaseRuntimeConfig) DSNValue() string {
	if v := strings.TrimSpace(c.DSN); v != "" {
		return v
	}
	if v := strings.TrimSpace(c.URL); v != "" {
		return v
	}

	host := strings.TrimSpace(c.Host)
	if host == "" {
		host = defaultDBHost
	}
	port := c.Port
	if port == 0 {
		port = defaultDBPort
	}
	user := strings.TrimSpace(c.User)
	if user == "" {
		user = strings.TrimSpace(c.Username)
	}
	if user == "" {
		user = defaultDBUser
	}
	password := strings.TrimSpace(c.Password)
	if password == "" {
		password = defaultDBPassword
	}
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = strings.TrimSpace(c.DBName)
	}
	if name == "" {
		name = defaultDBName
	}
	sslmode := strings.TrimSpace(c.SSLMode)
	if sslmode == "" {
		sslmode = defaultDBSSLMode
	}

	parts := []string{
		"host=" + host,
		"port=" + strconv.Itoa(port),
		"user=" + user,
		"password=" + password,
		"dbname=" + name,
		"sslmode=" + sslmode,
	}

	extra := make([]string, 0, len(c.Params))
	for key, value := range c.Params {
		k := strings.TrimSpace(key)
		v := strings.TrimSpace(value)
		if k != "" && v != "" {
			extra = append(extra, k+"="+v)
		}
	}
	sort.Strings(extra)

	return strings.Join(append(parts, extra...), " ")
}

// MaintenanceDSNValue is DSNValue pointed at the server's maintenance database,
// used to create the application database before the first real connection.
func (c DatabaseRuntimeConfig) MaintenanceDSNValue() string {
	maint := c
	maint.DSN = ""
	maint.URL = ""
	maint.Name = "postgres"
	maint.DBName = ""
	return maint.DSNValue()
}

// DatabaseName returns the configured database name after alias resolution.
func (c DatabaseRuntimeConfig) DatabaseName() string {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = strings.TrimSpace(c.DBName)
	}
	if name == "" {
		name = defaultDBName
	}
	return name
}

func (c RedisRuntimeConfig) URLValue() string {
	if u := strings.TrimSpace(c.URL); u != "" {
		if !strings.Contains(u, "://") {
			return "redis://" + u
		}
		return u
	}

	host := strings.TrimSpace(c.Host)
	if host == "" {
		host = defaultRedisHost
	}
	port := c.Port
	if port == 0 {
		port = defaultRedisPort
	}
	db := c.DB
	if db < 0 {
		db = defaultRedisDB
	}

	scheme := "redis"
	if c.TLS {
		scheme = "rediss"
	}

	u := &neturl.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + strconv.Itoa(db),
	}
	username := strings.TrimSpace(c.Username)
	password := strings.TrimSpace(c.Password)
	if username != "" {
		if password != "" {
			u.User = neturl.UserPassword(username, password)
		} else {
			u.User = neturl.User(username)
		}
	} else if password != "" {
		u.User = neturl.UserPassword("", password)
	}

	return u.String()
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

func (c *AppConfig) LogDir() string {
	if c == nil {
		return ResolveRuntimePath("", "logs")
	}
	return ResolveRuntimePath(c.Paths.Logs, "logs")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func copyStringMap(input map[string]string) map[string]string {
	if input == nil {
		return nil
	}
	out := make(map[string]string, len(input))
	for k, v := range input {
		out[k] = v
	}
	return out
}

func normalizeStringSlice(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
