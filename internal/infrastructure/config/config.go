package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides (COMFUND_DATABASE_PASSWORD)
const EnvPrefix = "COMFUND"

// Default secrets that production refuses to run with
const (
	devJWTSecret     = "dev-secret-change-me-please-0123456789"
	devAdminPassword = "change-me-now"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Fund      FundConfig
	Org       OrgConfig
	Storage   StorageConfig
	Bootstrap BootstrapConfig
	Stream    StreamConfig
	Swagger   SwaggerConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// IsProduction reports whether the app runs in production
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int  // minutes
	ConnMaxIdleTime int  // minutes
	AutoMigrate     bool // apply embedded migrations on start
}

// RedisConfig holds Redis connection settings. Redis is optional; without it
// caches are process-local and locks are skipped.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds token settings
type JWTConfig struct {
	Secret                 string
	RefreshSecret          string
	Issuer                 string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout           time.Duration
	WriteTimeout          time.Duration // zero keeps change streams open
	IdleTimeout           time.Duration
	RequestTimeout        time.Duration
	MaxHeaderBytes        int
	MaxBodySize           int64
	RateLimitEnabled      bool
	RateLimitRequests     int
	RateLimitWindow       time.Duration
	AuthRateLimitRequests int
	AuthRateLimitWindow   time.Duration
	CORSAllowOrigins      []string
	CORSAllowMethods      []string
	CORSAllowHeaders      []string
	TrustedProxies        []string
}

// FundConfig holds dues calculation settings
type FundConfig struct {
	DefaultMonthlyAmount int64
	Timezone             string
	StatsCacheTTL        time.Duration
	SeedFounderEntry     bool
	FounderAmount        int64
	FounderCategory      string
	FounderDescription   string
	FounderDate          string // YYYY-MM-DD
}

// Location resolves the configured time zone, falling back to UTC
func (f FundConfig) Location() *time.Location {
	if f.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(f.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// OrgConfig holds organization details shown to members
type OrgConfig struct {
	Name               string
	OfficialNumber     string
	CommitteePositions []string
}

// StorageConfig selects where proof screenshots and activity images go
type StorageConfig struct {
	Provider string // stub, s3, cloudinary
	MaxSize  int64

	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3UsePathStyle    bool
	S3PublicURL       string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
}

// BootstrapConfig holds the first admin account, created only when no admin exists
type BootstrapConfig struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// StreamConfig holds change stream settings
type StreamConfig struct {
	HeartbeatInterval time.Duration
	ClientBuffer      int
	MaxClients        int
	RedisChannel      string
}

// SwaggerConfig holds Swagger documentation endpoint configuration
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool
	AllowedIPs  []string
}

// TelemetryConfig holds OpenTelemetry and profiling configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool
	DBTraceEnabled    bool
	DBLogFullSQL      bool
	DBSlowQueryThresh time.Duration
	ProfilingEnabled  bool
	PyroscopeAddress  string
}

// Load reads configuration. Priority, highest first:
// COMFUND_* environment variables (a .env file is loaded into the environment
// first), config.toml, built-in defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := fromViper(v)
	applyDefaults(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                 v.GetString("jwt.secret"),
			RefreshSecret:          v.GetString("jwt.refresh_secret"),
			Issuer:                 v.GetString("jwt.issuer"),
			AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
			RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:           v.GetDuration("http.read_timeout"),
			WriteTimeout:          v.GetDuration("http.write_timeout"),
			IdleTimeout:           v.GetDuration("http.idle_timeout"),
			RequestTimeout:        v.GetDuration("http.request_timeout"),
			MaxHeaderBytes:        v.GetInt("http.max_header_bytes"),
			MaxBodySize:           v.GetInt64("http.max_body_size"),
			RateLimitEnabled:      v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests:     v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:       v.GetDuration("http.rate_limit_window"),
			AuthRateLimitRequests: v.GetInt("http.auth_rate_limit_requests"),
			AuthRateLimitWindow:   v.GetDuration("http.auth_rate_limit_window"),
			CORSAllowOrigins:      v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:      v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:      v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:        v.GetStringSlice("http.trusted_proxies"),
		},
		Fund: FundConfig{
			DefaultMonthlyAmount: v.GetInt64("fund.default_monthly_amount"),
			Timezone:             v.GetString("fund.timezone"),
			StatsCacheTTL:        v.GetDuration("fund.stats_cache_ttl"),
			SeedFounderEntry:     v.GetBool("fund.seed_founder_entry"),
			FounderAmount:        v.GetInt64("fund.founder_amount"),
			FounderCategory:      v.GetString("fund.founder_category"),
			FounderDescription:   v.GetString("fund.founder_description"),
			FounderDate:          v.GetString("fund.founder_date"),
		},
		Org: OrgConfig{
			Name:               v.GetString("org.name"),
			OfficialNumber:     v.GetString("org.official_number"),
			CommitteePositions: v.GetStringSlice("org.committee_positions"),
		},
		Storage: StorageConfig{
			Provider:            v.GetString("storage.provider"),
			MaxSize:             v.GetInt64("storage.max_size"),
			S3Bucket:            v.GetString("storage.s3_bucket"),
			S3Region:            v.GetString("storage.s3_region"),
			S3Endpoint:          v.GetString("storage.s3_endpoint"),
			S3AccessKeyID:       v.GetString("storage.s3_access_key_id"),
			S3SecretAccessKey:   v.GetString("storage.s3_secret_access_key"),
			S3UsePathStyle:      v.GetBool("storage.s3_use_path_style"),
			S3PublicURL:         v.GetString("storage.s3_public_url"),
			CloudinaryCloudName: v.GetString("storage.cloudinary_cloud_name"),
			CloudinaryAPIKey:    v.GetString("storage.cloudinary_api_key"),
			CloudinaryAPISecret: v.GetString("storage.cloudinary_api_secret"),
			CloudinaryFolder:    v.GetString("storage.cloudinary_folder"),
		},
		Bootstrap: BootstrapConfig{
			AdminName:     v.GetString("bootstrap.admin_name"),
			AdminEmail:    v.GetString("bootstrap.admin_email"),
			AdminPassword: v.GetString("bootstrap.admin_password"),
		},
		Stream: StreamConfig{
			HeartbeatInterval: v.GetDuration("stream.heartbeat_interval"),
			ClientBuffer:      v.GetInt("stream.client_buffer"),
			MaxClients:        v.GetInt("stream.max_clients"),
			RedisChannel:      v.GetString("stream.redis_channel"),
		},
		Swagger: SwaggerConfig{
			Enabled:     v.GetBool("swagger.enabled"),
			RequireAuth: v.GetBool("swagger.require_auth"),
			AllowedIPs:  v.GetStringSlice("swagger.allowed_ips"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			PyroscopeAddress:  v.GetString("telemetry.pyroscope_address"),
		},
	}
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "comfund"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "comfund"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 20
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}

	if cfg.JWT.Secret == "" && !cfg.App.IsProduction() {
		cfg.JWT.Secret = devJWTSecret
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = cfg.App.Name
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = time.Hour
	}
	if cfg.JWT.RefreshTokenExpiration == 0 {
		cfg.JWT.RefreshTokenExpiration = 7 * 24 * time.Hour
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.RequestTimeout == 0 {
		cfg.HTTP.RequestTimeout = 30 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 8 << 20
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 120
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.HTTP.AuthRateLimitRequests == 0 {
		cfg.HTTP.AuthRateLimitRequests = 10
	}
	if cfg.HTTP.AuthRateLimitWindow == 0 {
		cfg.HTTP.AuthRateLimitWindow = time.Minute
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}

	if cfg.Fund.DefaultMonthlyAmount <= 0 {
		cfg.Fund.DefaultMonthlyAmount = 500
	}
	if cfg.Fund.Timezone == "" {
		cfg.Fund.Timezone = "Asia/Dhaka"
	}
	if cfg.Fund.StatsCacheTTL == 0 {
		cfg.Fund.StatsCacheTTL = 5 * time.Minute
	}
	if cfg.Fund.FounderAmount == 0 {
		cfg.Fund.FounderAmount = 45000
	}
	if cfg.Fund.FounderCategory == "" {
		cfg.Fund.FounderCategory = "Founder donation"
	}
	if cfg.Fund.FounderDescription == "" {
		cfg.Fund.FounderDescription = "Initial donation at founding"
	}
	if cfg.Fund.FounderDate == "" {
		cfg.Fund.FounderDate = "2025-01-01"
	}

	if cfg.Org.Name == "" {
		cfg.Org.Name = cfg.App.Name
	}
	if len(cfg.Org.CommitteePositions) == 0 {
		cfg.Org.CommitteePositions = []string{
			"President", "Vice President", "General Secretary", "Joint Secretary",
			"Treasurer", "Organizing Secretary", "Executive Member",
		}
	}

	if cfg.Storage.Provider == "" {
		cfg.Storage.Provider = "stub"
	}
	if cfg.Storage.MaxSize == 0 {
		cfg.Storage.MaxSize = 5 << 20
	}
	if cfg.Storage.CloudinaryFolder == "" {
		cfg.Storage.CloudinaryFolder = "comfund"
	}

	if cfg.Bootstrap.AdminName == "" {
		cfg.Bootstrap.AdminName = "Administrator"
	}
	if cfg.Bootstrap.AdminPassword == "" && !cfg.App.IsProduction() && cfg.Bootstrap.AdminEmail != "" {
		cfg.Bootstrap.AdminPassword = devAdminPassword
	}

	if cfg.Stream.HeartbeatInterval == 0 {
		cfg.Stream.HeartbeatInterval = 30 * time.Second
	}
	if cfg.Stream.ClientBuffer == 0 {
		cfg.Stream.ClientBuffer = 16
	}
	if cfg.Stream.MaxClients == 0 {
		cfg.Stream.MaxClients = 500
	}
	if cfg.Stream.RedisChannel == "" {
		cfg.Stream.RedisChannel = "comfund:changes"
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = time.Minute
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	switch c.Storage.Provider {
	case "stub", "s3", "cloudinary":
	default:
		return fmt.Errorf("storage.provider must be stub, s3 or cloudinary, got %q", c.Storage.Provider)
	}
	if c.Storage.Provider == "s3" && c.Storage.S3Bucket == "" {
		return fmt.Errorf("storage.s3_bucket is required for the s3 provider")
	}
	if c.Storage.Provider == "cloudinary" && (c.Storage.CloudinaryCloudName == "" || c.Storage.CloudinaryAPIKey == "" || c.Storage.CloudinaryAPISecret == "") {
		return fmt.Errorf("cloudinary credentials are required for the cloudinary provider")
	}
	if _, err := time.LoadLocation(c.Fund.Timezone); err != nil {
		return fmt.Errorf("fund.timezone %q is not a known time zone: %w", c.Fund.Timezone, err)
	}
	if _, err := time.Parse(time.DateOnly, c.Fund.FounderDate); err != nil {
		return fmt.Errorf("fund.founder_date must be YYYY-MM-DD: %w", err)
	}
	if c.Bootstrap.AdminEmail != "" && len(c.Bootstrap.AdminPassword) < 8 {
		return fmt.Errorf("bootstrap.admin_password must be at least 8 characters")
	}
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.App.IsProduction() {
		if len(c.JWT.Secret) < 32 || c.JWT.Secret == devJWTSecret {
			return fmt.Errorf("jwt.secret must be set to at least 32 characters in production")
		}
		if c.Bootstrap.AdminPassword == devAdminPassword {
			return fmt.Errorf("bootstrap.admin_password must be changed in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production")
			}
		}
		if c.Swagger.Enabled && !c.Swagger.RequireAuth && len(c.Swagger.AllowedIPs) == 0 {
			return fmt.Errorf("swagger endpoint must be disabled, require authentication, or have IP restriction in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
	}
	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
