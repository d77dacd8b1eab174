// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig         `mapstructure:"app"`
	Database     DatabaseConfig    `mapstructure:"database"`
	Session      SessionConfig     `mapstructure:"session"`
	Advisor      AdvisorConfig     `mapstructure:"advisor"`
	Catalog      CatalogConfig     `mapstructure:"catalog"`
	Integrations IntegrationConfig `mapstructure:"integrations"`
	APIs         APIsConfig        `mapstructure:"apis"`
	Logging      LoggingConfig     `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	MetricsAddr string `mapstructure:"metrics_addr"`
	// TracingEndpoint is the Jaeger collector URL. Empty disables tracing.
	TracingEndpoint string `mapstructure:"tracing_endpoint"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	URL        string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SessionConfig holds settings for conversation session persistence.
type SessionConfig struct {
	TTLMinutes  int    `mapstructure:"ttl_minutes"`
	AuditIndex  string `mapstructure:"audit_index"`
	IdleTimeout int    `mapstructure:"idle_timeout"` // milliseconds
}

// AdvisorConfig holds tunables for the decision pipeline.
type AdvisorConfig struct {
	// FallbackCreditScore is used when the bureau is unreachable.
	FallbackCreditScore int `mapstructure:"fallback_credit_score"`
	// RemoteUnderwritingURL routes evaluations to an external decision API
	// when set. Empty means the local engine decides alone.
	RemoteUnderwritingURL string `mapstructure:"remote_underwriting_url"`
	RemoteTimeout         int    `mapstructure:"remote_timeout"` // milliseconds
	// IncomeTolerancePct is the allowed gap between declared and
	// document-extracted income.
	IncomeTolerancePct float64 `mapstructure:"income_tolerance_pct"`
}

// CatalogConfig holds settings for the loan product catalog.
type CatalogConfig struct {
	RegistryPath string `mapstructure:"registry_path"`
	SchemaPath   string `mapstructure:"schema_path"`
}

// IntegrationConfig holds settings for email, SMS, and other external services.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled            bool   `mapstructure:"enabled"`
			DefaultSMSSenderID string `mapstructure:"default_sms_sender_id"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	GenAI struct {
		Model   string `mapstructure:"model"`
		APIKey  string `mapstructure:"api_key"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"genai"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
