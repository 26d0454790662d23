package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Log          LogConfig
	HTTP         HTTPConfig
	Scheduler    SchedulerConfig
	Storage      StorageConfig
	Subscription SubscriptionConfig
	Payment      PaymentConfig
	Messaging    MessagingConfig
	Printing     PrintingConfig
	Swagger      SwaggerConfig
	Telemetry    TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
	// PublicURL is the externally reachable base URL, used for gateway callbacks
	PublicURL string
	// AdminAPIKey guards the back-office subscription routes; empty disables them
	AdminAPIKey string
}

// IsProduction reports whether the app runs in production
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
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

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                 string
	RefreshSecret          string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
	// MaxRefreshCount caps how many times a refresh token chain can be renewed
	MaxRefreshCount int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout           time.Duration
	WriteTimeout          time.Duration
	IdleTimeout           time.Duration
	MaxHeaderBytes        int
	MaxBodySize           int64
	RateLimitEnabled      bool
	RateLimitRequests     int
	RateLimitWindow       time.Duration
	AuthRateLimitEnabled  bool
	AuthRateLimitRequests int
	AuthRateLimitWindow   time.Duration
	CORSAllowOrigins      []string
	CORSAllowMethods      []string
	CORSAllowHeaders      []string
	TrustedProxies        []string
	// HSTSMaxAge enables Strict-Transport-Security when positive
	HSTSMaxAge time.Duration
}

// SchedulerConfig holds background sweeper configuration
type SchedulerConfig struct {
	Enabled       bool
	SweepInterval time.Duration
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	// ReminderHorizon is how far ahead calendar reminders are looked up
	ReminderHorizon time.Duration
}

// StorageConfig holds document object storage settings
type StorageConfig struct {
	Driver          string // s3, memory
	Bucket          string
	Region          string
	Endpoint        string // custom endpoint for S3-compatible stores (MinIO)
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	PresignTTL      time.Duration
}

// SubscriptionConfig holds subscription gating policy
type SubscriptionConfig struct {
	TrialDays    int
	GraceDays    int
	ReminderDays []int // days before expiry at which reminders are sent
	Currency     string
	// AccessCacheTTL bounds how stale a cached access state may be
	AccessCacheTTL time.Duration
}

// MaxReminderDays returns the widest reminder window
func (s SubscriptionConfig) MaxReminderDays() int {
	max := 0
	for _, d := range s.ReminderDays {
		if d > max {
			max = d
		}
	}
	return max
}

// PaymentConfig holds gateway credentials
type PaymentConfig struct {
	CallbackBaseURL   string
	CallbackDedupeTTL time.Duration
	StatusPollTimeout time.Duration
	MTN               MTNMoMoConfig
	Orange            OrangeMoneyConfig
	CinetPay          CinetPayConfig
	Stripe            StripeConfig
}

// MTNMoMoConfig configures the MTN MoMo Collection API
type MTNMoMoConfig struct {
	Enabled           bool
	BaseURL           string
	SubscriptionKey   string
	APIUser           string
	APIKey            string
	TargetEnvironment string
}

// OrangeMoneyConfig configures the Orange Money merchant payment API
type OrangeMoneyConfig struct {
	Enabled      bool
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	// AuthToken is sent as X-AUTH-TOKEN on merchant payment calls
	AuthToken     string
	ChannelMSISDN string
	PIN           string
}

// CinetPayConfig configures the CinetPay checkout
type CinetPayConfig struct {
	Enabled   bool
	BaseURL   string
	APIKey    string
	SiteID    string
	SecretKey string
	ReturnURL string
}

// StripeConfig configures card payments through Stripe Checkout
type StripeConfig struct {
	Enabled bool
	// BaseURL overrides the Stripe API endpoint, for stripe-mock
	BaseURL       string
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// MessagingConfig holds credentials for outbound channels
type MessagingConfig struct {
	Email    EmailConfig
	SMS      SMSConfig
	WhatsApp WhatsAppConfig
}

// EmailConfig configures the HTTP email API
type EmailConfig struct {
	Enabled   bool
	BaseURL   string
	APIKey    string
	FromEmail string
	FromName  string
}

// SMSConfig configures the Twilio-style SMS API
type SMSConfig struct {
	Enabled    bool
	BaseURL    string
	AccountSID string
	AuthToken  string
	From       string
}

// WhatsAppConfig configures the WhatsApp Cloud API
type WhatsAppConfig struct {
	Enabled       bool
	BaseURL       string
	PhoneNumberID string
	AccessToken   string
}

// PrintingConfig holds PDF rendering settings
type PrintingConfig struct {
	Enabled bool
	// RemoteURL points at a running headless Chrome; empty launches a local one
	RemoteURL string
	Timeout   time.Duration
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
	CollectorEndpoint string // OTLP gRPC endpoint, e.g. localhost:4317
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	MetricsEnabled    bool
	LogsEnabled       bool
	DBTraceEnabled    bool
	DBLogFullSQL      bool
	DBSlowQueryThresh time.Duration
	// Continuous profiling
	ProfilingEnabled bool
	PyroscopeAddress string
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with LEX_ prefix (e.g., LEX_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("LEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:        v.GetString("app.name"),
			Env:         v.GetString("app.env"),
			Port:        v.GetString("app.port"),
			PublicURL:   v.GetString("app.public_url"),
			AdminAPIKey: v.GetString("app.admin_api_key"),
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
			AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
			RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
			Issuer:                 v.GetString("jwt.issuer"),
			MaxRefreshCount:        v.GetInt("jwt.max_refresh_count"),
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
			MaxHeaderBytes:        v.GetInt("http.max_header_bytes"),
			MaxBodySize:           v.GetInt64("http.max_body_size"),
			RateLimitEnabled:      v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests:     v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:       v.GetDuration("http.rate_limit_window"),
			AuthRateLimitEnabled:  v.GetBool("http.auth_rate_limit_enabled"),
			AuthRateLimitRequests: v.GetInt("http.auth_rate_limit_requests"),
			AuthRateLimitWindow:   v.GetDuration("http.auth_rate_limit_window"),
			CORSAllowOrigins:      v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:      v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:      v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:        v.GetStringSlice("http.trusted_proxies"),
			HSTSMaxAge:            v.GetDuration("http.hsts_max_age"),
		},
		Scheduler: SchedulerConfig{
			Enabled:         v.GetBool("scheduler.enabled"),
			SweepInterval:   v.GetDuration("scheduler.sweep_interval"),
			JobTimeout:      v.GetDuration("scheduler.job_timeout"),
			RetryAttempts:   v.GetInt("scheduler.retry_attempts"),
			RetryDelay:      v.GetDuration("scheduler.retry_delay"),
			ReminderHorizon: v.GetDuration("scheduler.reminder_horizon"),
		},
		Storage: StorageConfig{
			Driver:          v.GetString("storage.driver"),
			Bucket:          v.GetString("storage.bucket"),
			Region:          v.GetString("storage.region"),
			Endpoint:        v.GetString("storage.endpoint"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
			PresignTTL:      v.GetDuration("storage.presign_ttl"),
		},
		Subscription: SubscriptionConfig{
			TrialDays:      v.GetInt("subscription.trial_days"),
			GraceDays:      v.GetInt("subscription.grace_days"),
			ReminderDays:   v.GetIntSlice("subscription.reminder_days"),
			Currency:       v.GetString("subscription.currency"),
			AccessCacheTTL: v.GetDuration("subscription.access_cache_ttl"),
		},
		Payment: PaymentConfig{
			CallbackBaseURL:   v.GetString("payment.callback_base_url"),
			CallbackDedupeTTL: v.GetDuration("payment.callback_dedupe_ttl"),
			StatusPollTimeout: v.GetDuration("payment.status_poll_timeout"),
			MTN: MTNMoMoConfig{
				Enabled:           v.GetBool("payment.mtn.enabled"),
				BaseURL:           v.GetString("payment.mtn.base_url"),
				SubscriptionKey:   v.GetString("payment.mtn.subscription_key"),
				APIUser:           v.GetString("payment.mtn.api_user"),
				APIKey:            v.GetString("payment.mtn.api_key"),
				TargetEnvironment: v.GetString("payment.mtn.target_environment"),
			},
			Orange: OrangeMoneyConfig{
				Enabled:       v.GetBool("payment.orange.enabled"),
				BaseURL:       v.GetString("payment.orange.base_url"),
				TokenURL:      v.GetString("payment.orange.token_url"),
				ClientID:      v.GetString("payment.orange.client_id"),
				ClientSecret:  v.GetString("payment.orange.client_secret"),
				AuthToken:     v.GetString("payment.orange.auth_token"),
				ChannelMSISDN: v.GetString("payment.orange.channel_msisdn"),
				PIN:           v.GetString("payment.orange.pin"),
			},
			CinetPay: CinetPayConfig{
				Enabled:   v.GetBool("payment.cinetpay.enabled"),
				BaseURL:   v.GetString("payment.cinetpay.base_url"),
				APIKey:    v.GetString("payment.cinetpay.api_key"),
				SiteID:    v.GetString("payment.cinetpay.site_id"),
				SecretKey: v.GetString("payment.cinetpay.secret_key"),
				ReturnURL: v.GetString("payment.cinetpay.return_url"),
			},
			Stripe: StripeConfig{
				Enabled:       v.GetBool("payment.stripe.enabled"),
				BaseURL:       v.GetString("payment.stripe.base_url"),
				SecretKey:     v.GetString("payment.stripe.secret_key"),
				WebhookSecret: v.GetString("payment.stripe.webhook_secret"),
				SuccessURL:    v.GetString("payment.stripe.success_url"),
				CancelURL:     v.GetString("payment.stripe.cancel_url"),
			},
		},
		Messaging: MessagingConfig{
			Email: EmailConfig{
				Enabled:   v.GetBool("messaging.email.enabled"),
				BaseURL:   v.GetString("messaging.email.base_url"),
				APIKey:    v.GetString("messaging.email.api_key"),
				FromEmail: v.GetString("messaging.email.from_email"),
				FromName:  v.GetString("messaging.email.from_name"),
			},
			SMS: SMSConfig{
				Enabled:    v.GetBool("messaging.sms.enabled"),
				BaseURL:    v.GetString("messaging.sms.base_url"),
				AccountSID: v.GetString("messaging.sms.account_sid"),
				AuthToken:  v.GetString("messaging.sms.auth_token"),
				From:       v.GetString("messaging.sms.from"),
			},
			WhatsApp: WhatsAppConfig{
				Enabled:       v.GetBool("messaging.whatsapp.enabled"),
				BaseURL:       v.GetString("messaging.whatsapp.base_url"),
				PhoneNumberID: v.GetString("messaging.whatsapp.phone_number_id"),
				AccessToken:   v.GetString("messaging.whatsapp.access_token"),
			},
		},
		Printing: PrintingConfig{
			Enabled:   v.GetBool("printing.enabled"),
			RemoteURL: v.GetString("printing.remote_url"),
			Timeout:   v.GetDuration("printing.timeout"),
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
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			PyroscopeAddress:  v.GetString("telemetry.pyroscope_address"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "lexdesk"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.PublicURL == "" {
		cfg.App.PublicURL = "http://localhost:" + cfg.App.Port
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
		cfg.Database.DBName = "lexdesk"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
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
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 15 * time.Minute
	}
	if cfg.JWT.RefreshTokenExpiration == 0 {
		cfg.JWT.RefreshTokenExpiration = 168 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "lexdesk"
	}
	if cfg.JWT.MaxRefreshCount == 0 {
		cfg.JWT.MaxRefreshCount = 50
	}
	if cfg.JWT.RefreshSecret == "" {
		cfg.JWT.RefreshSecret = cfg.JWT.Secret
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
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 55 << 20 // documents go up to 50MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.HTTP.AuthRateLimitRequests == 0 {
		cfg.HTTP.AuthRateLimitRequests = 5
	}
	if cfg.HTTP.AuthRateLimitWindow == 0 {
		cfg.HTTP.AuthRateLimitWindow = time.Minute
	}
	// No CORS origin default: cross-origin requests stay closed until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Scheduler.SweepInterval == 0 {
		cfg.Scheduler.SweepInterval = 15 * time.Minute
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 5 * time.Minute
	}
	if cfg.Scheduler.RetryAttempts == 0 {
		cfg.Scheduler.RetryAttempts = 3
	}
	if cfg.Scheduler.RetryDelay == 0 {
		cfg.Scheduler.RetryDelay = 30 * time.Second
	}
	if cfg.Scheduler.ReminderHorizon == 0 {
		cfg.Scheduler.ReminderHorizon = 7 * 24 * time.Hour
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "memory"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.PresignTTL == 0 {
		cfg.Storage.PresignTTL = 15 * time.Minute
	}
	if cfg.Subscription.TrialDays == 0 {
		cfg.Subscription.TrialDays = 14
	}
	if cfg.Subscription.GraceDays == 0 {
		cfg.Subscription.GraceDays = 7
	}
	if len(cfg.Subscription.ReminderDays) == 0 {
		cfg.Subscription.ReminderDays = []int{7, 3, 1}
	}
	if cfg.Subscription.Currency == "" {
		cfg.Subscription.Currency = "XAF"
	}
	cfg.Subscription.Currency = strings.ToUpper(cfg.Subscription.Currency)
	if cfg.Subscription.AccessCacheTTL == 0 {
		cfg.Subscription.AccessCacheTTL = time.Minute
	}
	if cfg.Payment.CallbackBaseURL == "" {
		cfg.Payment.CallbackBaseURL = strings.TrimRight(cfg.App.PublicURL, "/") + "/api/v1/payments/callbacks"
	}
	if cfg.Payment.CallbackDedupeTTL == 0 {
		cfg.Payment.CallbackDedupeTTL = 24 * time.Hour
	}
	if cfg.Payment.StatusPollTimeout == 0 {
		cfg.Payment.StatusPollTimeout = 20 * time.Second
	}
	if cfg.Payment.MTN.BaseURL == "" {
		cfg.Payment.MTN.BaseURL = "https://sandbox.momodeveloper.mtn.com"
	}
	if cfg.Payment.MTN.TargetEnvironment == "" {
		cfg.Payment.MTN.TargetEnvironment = "sandbox"
	}
	if cfg.Payment.Orange.BaseURL == "" {
		cfg.Payment.Orange.BaseURL = "https://api-s1.orange.cm/omcoreapis/1.0.2"
	}
	if cfg.Payment.Orange.TokenURL == "" {
		cfg.Payment.Orange.TokenURL = "https://api-s1.orange.cm/token"
	}
	if cfg.Payment.CinetPay.BaseURL == "" {
		cfg.Payment.CinetPay.BaseURL = "https://api-checkout.cinetpay.com/v2"
	}
	if cfg.Messaging.Email.BaseURL == "" {
		cfg.Messaging.Email.BaseURL = "https://api.sendgrid.com/v3"
	}
	if cfg.Messaging.Email.FromName == "" {
		cfg.Messaging.Email.FromName = "LexDesk"
	}
	if cfg.Messaging.SMS.BaseURL == "" {
		cfg.Messaging.SMS.BaseURL = "https://api.twilio.com/2010-04-01"
	}
	if cfg.Messaging.WhatsApp.BaseURL == "" {
		cfg.Messaging.WhatsApp.BaseURL = "https://graph.facebook.com/v19.0"
	}
	if cfg.Printing.Timeout == 0 {
		cfg.Printing.Timeout = 30 * time.Second
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
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Telemetry.PyroscopeAddress == "" {
		cfg.Telemetry.PyroscopeAddress = "http://localhost:4040"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Subscription.GraceDays < 0 {
		return fmt.Errorf("subscription.grace_days cannot be negative")
	}
	if c.Subscription.TrialDays < 0 {
		return fmt.Errorf("subscription.trial_days cannot be negative")
	}
	for _, d := range c.Subscription.ReminderDays {
		if d <= 0 {
			return fmt.Errorf("subscription.reminder_days must contain positive values, got %d", d)
		}
	}
	if len(c.Subscription.Currency) != 3 {
		return fmt.Errorf("subscription.currency must be a 3-letter ISO code")
	}
	switch c.Storage.Driver {
	case "memory":
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("storage.driver must be s3 or memory, got %q", c.Storage.Driver)
	}
	if c.Payment.MTN.Enabled && (c.Payment.MTN.SubscriptionKey == "" || c.Payment.MTN.APIUser == "" || c.Payment.MTN.APIKey == "") {
		return fmt.Errorf("payment.mtn requires subscription_key, api_user and api_key when enabled")
	}
	if c.Payment.Orange.Enabled && (c.Payment.Orange.ClientID == "" || c.Payment.Orange.ClientSecret == "" || c.Payment.Orange.AuthToken == "" || c.Payment.Orange.ChannelMSISDN == "" || c.Payment.Orange.PIN == "") {
		return fmt.Errorf("payment.orange requires client_id, client_secret, auth_token, channel_msisdn and pin when enabled")
	}
	if c.Payment.CinetPay.Enabled && (c.Payment.CinetPay.APIKey == "" || c.Payment.CinetPay.SiteID == "") {
		return fmt.Errorf("payment.cinetpay requires api_key and site_id when enabled")
	}
	if c.Payment.Stripe.Enabled && (c.Payment.Stripe.SecretKey == "" || c.Payment.Stripe.WebhookSecret == "" || c.Payment.Stripe.SuccessURL == "") {
		return fmt.Errorf("payment.stripe requires secret_key, webhook_secret and success_url when enabled")
	}

	if c.App.IsProduction() {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.App.AdminAPIKey != "" && len(c.App.AdminAPIKey) < 32 {
			return fmt.Errorf("app.admin_api_key must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Swagger.Enabled && !c.Swagger.RequireAuth && len(c.Swagger.AllowedIPs) == 0 {
			return fmt.Errorf("swagger endpoint must be disabled, require authentication, or have IP restriction in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
		if c.Storage.Driver == "memory" {
			return fmt.Errorf("storage.driver cannot be 'memory' in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
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
