package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "lexdesk", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "http://localhost:8080", cfg.App.PublicURL)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "lexdesk", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 14, cfg.Subscription.TrialDays)
		assert.Equal(t, 7, cfg.Subscription.GraceDays)
		assert.Equal(t, []int{7, 3, 1}, cfg.Subscription.ReminderDays)
		assert.Equal(t, "XAF", cfg.Subscription.Currency)
		assert.Equal(t, "memory", cfg.Storage.Driver)
		assert.Equal(t, "http://localhost:8080/api/v1/payments/callbacks", cfg.Payment.CallbackBaseURL)
		assert.Equal(t, "sandbox", cfg.Payment.MTN.TargetEnvironment)
		assert.Equal(t, 15*time.Minute, cfg.Scheduler.SweepInterval)
		assert.Equal(t, "lexdesk", cfg.Telemetry.ServiceName)
	})

	t.Run("loads values from environment variables with LEX prefix", func(t *testing.T) {
		t.Setenv("LEX_APP_NAME", "lexdesk-test")
		t.Setenv("LEX_APP_PORT", "9000")
		t.Setenv("LEX_DATABASE_HOST", "testdb.local")
		t.Setenv("LEX_DATABASE_PASSWORD", "testpass")
		t.Setenv("LEX_SUBSCRIPTION_GRACE_DAYS", "3")
		t.Setenv("LEX_SUBSCRIPTION_CURRENCY", "eur")
		t.Setenv("LEX_PAYMENT_CINETPAY_ENABLED", "true")
		t.Setenv("LEX_PAYMENT_CINETPAY_API_KEY", "key")
		t.Setenv("LEX_PAYMENT_CINETPAY_SITE_ID", "42")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "lexdesk-test", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, 3, cfg.Subscription.GraceDays)
		assert.Equal(t, "EUR", cfg.Subscription.Currency)
		assert.True(t, cfg.Payment.CinetPay.Enabled)
		assert.Equal(t, "42", cfg.Payment.CinetPay.SiteID)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		t.Setenv("LEX_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("LEX_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("enabled gateway requires credentials", func(t *testing.T) {
		t.Setenv("LEX_PAYMENT_MTN_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "payment.mtn")
	})

	t.Run("rejects unknown storage driver", func(t *testing.T) {
		t.Setenv("LEX_STORAGE_DRIVER", "ftp")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("s3 driver needs a bucket", func(t *testing.T) {
		t.Setenv("LEX_STORAGE_DRIVER", "s3")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.bucket")
	})
}

func TestConfig_ProductionValidation(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.App.Env = "production"
		cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
		cfg.Database.Password = "secret"
		cfg.Database.SSLMode = "require"
		cfg.Storage.Driver = "s3"
		cfg.Storage.Bucket = "lexdesk-docs"
		applyDefaults(cfg)
		return cfg
	}

	require.NoError(t, base().validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"short secret", func(c *Config) { c.JWT.Secret = "short" }, "jwt.secret"},
		{"no db password", func(c *Config) { c.Database.Password = "" }, "database.password"},
		{"sslmode disabled", func(c *Config) { c.Database.SSLMode = "disable" }, "sslmode"},
		{"wildcard cors", func(c *Config) { c.HTTP.CORSAllowOrigins = []string{"*"} }, "cors"},
		{"open swagger", func(c *Config) { c.Swagger.Enabled = true }, "swagger"},
		{"memory storage", func(c *Config) { c.Storage.Driver = "memory" }, "storage.driver"},
		{"full sql in traces", func(c *Config) { c.Telemetry.DBLogFullSQL = true }, "db_log_full_sql"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfig_SubscriptionValidation(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Subscription.ReminderDays = []int{7, 0}
	assert.Error(t, cfg.validate())

	cfg.Subscription.ReminderDays = []int{3, 10, 1}
	require.NoError(t, cfg.validate())
	assert.Equal(t, 10, cfg.Subscription.MaxReminderDays())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "lex", Password: "p@ss word", DBName: "lexdesk", SSLMode: "require"}
	assert.Equal(t, "postgres://lex:p%40ss%20word@db:5432/lexdesk?sslmode=require", d.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
