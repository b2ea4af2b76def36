package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/SscSPs/holistic_money/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "holistic-money-dev-secret-change-me"

// Access policy names accepted by ACCESS_POLICY.
const (
	AccessPolicyAllowAll   = "allow_all"
	AccessPolicyGrantTable = "grant_table"
)

// Config holds application configuration.
type Config struct {
	Port                 int `validate:"min=1,max=65535"`
	PortFallbackAttempts int `validate:"min=0"`
	IsProduction         bool
	ShutdownTimeout      time.Duration
	StaticDir            string // Optional pre-built SPA bundle

	// Relational store
	DatabaseURL        string
	PGCACertFile       string
	PGCACertContent    string
	DBMaxConns         int32 `validate:"min=1"`
	DBMinConns         int32 `validate:"min=0,ltefield=DBMaxConns"`
	DBConnectTimeout   time.Duration
	DBStatementTimeout time.Duration
	DBHealthInterval   time.Duration `validate:"gt=0"`
	RunMigrations      bool
	MigrationsPath     string `validate:"required"`

	// Analytics store
	ProjectID                string
	GoogleCredentialsFile    string
	GoogleCredentialsContent string
	CredentialsDir           string `validate:"required"`
	BQLocation               string
	PLBudgetView             string `validate:"required"`
	CommentsTable            string `validate:"required"`
	LatestCommentsView       string `validate:"required"`

	CORSOrigins []string

	JWTSecret         string        `validate:"required"`
	JWTExpiryDuration time.Duration `validate:"gt=0"`
	JWTIssuer         string

	SyncEnabled     bool
	SyncFrequency   time.Duration `validate:"gt=0"`
	SyncOnStartup   bool
	SyncConcurrency int `validate:"min=1"`

	AdminEmail     string `validate:"required,email"`
	AdminPassword  string
	AccessPolicy   string `validate:"oneof=allow_all grant_table"`
	LoginRateLimit string `validate:"required"`

	PosthogAPIKey   string
	PosthogEndpoint string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 3001)
	v.SetDefault("PORT_FALLBACK_ATTEMPTS", 10)
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("STATIC_DIR", "")

	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PG_HOST", "localhost")
	v.SetDefault("PG_PORT", 5432)
	v.SetDefault("PG_DATABASE", "holistic_money")
	v.SetDefault("PG_USER", "postgres")
	v.SetDefault("PG_PASSWORD", "")
	v.SetDefault("PG_SSL_MODE", "")
	v.SetDefault("PG_CA_CERT", "")
	v.SetDefault("PG_CA_CERT_CONTENT", "")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("DB_CONNECT_TIMEOUT", "5s")
	v.SetDefault("DB_STATEMENT_TIMEOUT", "30s")
	v.SetDefault("DB_HEALTH_INTERVAL", "5s")
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")

	v.SetDefault("PROJECT_ID", "")
	v.SetDefault("GOOGLE_APPLICATION_CREDENTIALS", "")
	v.SetDefault("GOOGLE_APPLICATION_CREDENTIALS_CONTENT", "")
	v.SetDefault("CREDENTIALS_DIR", "credentials")
	v.SetDefault("BQ_LOCATION", "")
	v.SetDefault("PL_BUDGET_VIEW", "pl_budget_with_comments")
	v.SetDefault("BQ_COMMENTS_TABLE", "financial_comments")
	v.SetDefault("BQ_LATEST_COMMENTS_VIEW", "latest_financial_comments")

	v.SetDefault("CORS_ORIGIN", "http://localhost:3000")

	v.SetDefault("JWT_SECRET", DefaultJWTSecret)
	v.SetDefault("JWT_EXPIRY_DURATION", "24h")
	v.SetDefault("JWT_ISSUER", "holistic-money")

	v.SetDefault("SYNC_ENABLED", false)
	v.SetDefault("SYNC_FREQUENCY", 60)
	v.SetDefault("SYNC_ON_STARTUP", false)
	v.SetDefault("SYNC_CONCURRENCY", 1)

	v.SetDefault("ADMIN_EMAIL", "admin@holistic-money.com")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("ACCESS_POLICY", AccessPolicyAllowAll)
	v.SetDefault("LOGIN_RATE_LIMIT", "5-M")

	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("POSTHOG_ENDPOINT", "")
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Port:                 v.GetInt("PORT"),
		PortFallbackAttempts: v.GetInt("PORT_FALLBACK_ATTEMPTS"),
		IsProduction:         v.GetBool("IS_PRODUCTION"),
		ShutdownTimeout:      v.GetDuration("SHUTDOWN_TIMEOUT"),
		StaticDir:            v.GetString("STATIC_DIR"),

		PGCACertFile:       v.GetString("PG_CA_CERT"),
		PGCACertContent:    v.GetString("PG_CA_CERT_CONTENT"),
		DBMaxConns:         v.GetInt32("DB_MAX_CONNS"),
		DBMinConns:         v.GetInt32("DB_MIN_CONNS"),
		DBConnectTimeout:   v.GetDuration("DB_CONNECT_TIMEOUT"),
		DBStatementTimeout: v.GetDuration("DB_STATEMENT_TIMEOUT"),
		DBHealthInterval:   v.GetDuration("DB_HEALTH_INTERVAL"),
		RunMigrations:      v.GetBool("RUN_MIGRATIONS"),
		MigrationsPath:     v.GetString("MIGRATIONS_PATH"),

		ProjectID:                v.GetString("PROJECT_ID"),
		GoogleCredentialsFile:    v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
		GoogleCredentialsContent: v.GetString("GOOGLE_APPLICATION_CREDENTIALS_CONTENT"),
		CredentialsDir:           v.GetString("CREDENTIALS_DIR"),
		BQLocation:               v.GetString("BQ_LOCATION"),
		PLBudgetView:             v.GetString("PL_BUDGET_VIEW"),
		CommentsTable:            v.GetString("BQ_COMMENTS_TABLE"),
		LatestCommentsView:       v.GetString("BQ_LATEST_COMMENTS_VIEW"),

		CORSOrigins: splitList(v.GetString("CORS_ORIGIN")),

		JWTSecret:         v.GetString("JWT_SECRET"),
		JWTExpiryDuration: v.GetDuration("JWT_EXPIRY_DURATION"),
		JWTIssuer:         v.GetString("JWT_ISSUER"),

		SyncEnabled:     v.GetBool("SYNC_ENABLED"),
		SyncFrequency:   time.Duration(v.GetInt("SYNC_FREQUENCY")) * time.Minute,
		SyncOnStartup:   v.GetBool("SYNC_ON_STARTUP"),
		SyncConcurrency: v.GetInt("SYNC_CONCURRENCY"),

		AdminEmail:     v.GetString("ADMIN_EMAIL"),
		AdminPassword:  v.GetString("ADMIN_PASSWORD"),
		AccessPolicy:   strings.ToLower(v.GetString("ACCESS_POLICY")),
		LoginRateLimit: v.GetString("LOGIN_RATE_LIMIT"),

		PosthogAPIKey:   v.GetString("POSTHOG_API_KEY"),
		PosthogEndpoint: v.GetString("POSTHOG_ENDPOINT"),
	}

	cfg.DatabaseURL = v.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = buildDatabaseURL(
			v.GetString("PG_HOST"), v.GetInt("PG_PORT"), v.GetString("PG_DATABASE"),
			v.GetString("PG_USER"), v.GetString("PG_PASSWORD"), v.GetString("PG_SSL_MODE"),
		)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.JWTSecret == DefaultJWTSecret {
		if cfg.IsProduction {
			return nil, errors.New("JWT_SECRET must be set in production")
		}
		log.Println("Warning: JWT_SECRET not set. Using the development default.")
	}
	if cfg.ProjectID == "" {
		log.Println("Warning: PROJECT_ID not set. Financial data and sync will fail.")
	}
	if cfg.AdminPassword == "" {
		log.Println("Warning: ADMIN_PASSWORD not set. The admin user will not be bootstrapped.")
	}

	return cfg, nil
}

// MaterializeCredentials writes inline credential content to CredentialsDir and
// points the corresponding file settings at the written files.
func (c *Config) MaterializeCredentials() error {
	if c.PGCACertContent != "" {
		path, err := utils.WriteCredentialFile(c.CredentialsDir, "ca.pem", c.PGCACertContent)
		if err != nil {
			return err
		}
		c.PGCACertFile = path
	}
	if c.GoogleCredentialsContent != "" {
		path, err := utils.WriteCredentialFile(c.CredentialsDir, "service-account.json", c.GoogleCredentialsContent)
		if err != nil {
			return err
		}
		c.GoogleCredentialsFile = path
	}
	return nil
}

// Address returns the listen address for the given port offset.
func (c *Config) Address(offset int) string {
	return fmt.Sprintf(":%d", c.Port+offset)
}

func buildDatabaseURL(host string, port int, database, user, password, sslMode string) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", host, port),
		Path:   "/" + database,
	}
	if password != "" {
		u.User = url.UserPassword(user, password)
	} else {
		u.User = url.User(user)
	}
	if sslMode != "" {
		q := url.Values{}
		q.Set("sslmode", sslMode)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
