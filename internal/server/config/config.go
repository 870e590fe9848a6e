// Package config handles configuration for the bot process, including
// defaults, a JSON overlay, environment variables and command-line flags.
package config

import "time"

// Config holds runtime settings for the bot.
//
// Fields:
//   - BotToken: Bot API credential.
//   - AdminIDs: root operators; always privileged, never revocable at runtime.
//   - DatabaseDSN: SQLite file path, or a postgres:// DSN (pgx).
//   - DefaultChannelID: mandatory group seeded into the registry on startup.
//   - WebhookURL / WebhookPath / WebhookSecret / Port: webhook ingestion. An
//     empty WebhookURL selects long polling.
//   - GRPCAddr: bind address of the gRPC health endpoint, empty disables it.
//   - APIBaseURL / APITimeout / PollTimeout: Bot API client settings.
//   - MembershipTimeout / DeliveryTimeout: per-call deadlines for the access
//     gate and the broadcast engine.
//   - BroadcastInterval: minimum delay between two broadcast deliveries.
//   - ConversationTTL: idle lifetime of an unfinished wizard.
//   - ActiveWindow: how far back "active users" are counted in statistics.
//   - Workers: maximum number of updates processed concurrently.
//   - S3*: object storage for catalog exports; empty bucket disables export.
type Config struct {
	BotToken          string        `env:"BOT_TOKEN"`
	AdminIDs          []int64       `env:"ADMIN_IDS" envSeparator:","`
	DatabaseDSN       string        `env:"DATABASE_PATH"`
	DefaultChannelID  string        `env:"DEFAULT_CHANNEL_ID"`
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookPath       string        `env:"WEBHOOK_PATH"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	Port              int           `env:"PORT"`
	GRPCAddr          string        `env:"GRPC_ADDR"`
	APIBaseURL        string        `env:"API_BASE_URL"`
	APITimeout        time.Duration `env:"API_TIMEOUT"`
	PollTimeout       time.Duration `env:"POLL_TIMEOUT"`
	MembershipTimeout time.Duration `env:"MEMBERSHIP_TIMEOUT"`
	DeliveryTimeout   time.Duration `env:"DELIVERY_TIMEOUT"`
	BroadcastInterval time.Duration `env:"BROADCAST_INTERVAL"`
	ConversationTTL   time.Duration `env:"CONVERSATION_TTL"`
	ActiveWindow      time.Duration `env:"ACTIVE_WINDOW"`
	Workers           int           `env:"WORKERS"`
	LogLevel          string        `env:"LOG_LEVEL"`
	S3Bucket          string        `env:"S3_BUCKET"`
	S3Region          string        `env:"S3_REGION"`
	S3BaseEndpoint    string        `env:"S3_BASE_ENDPOINT"`
	S3AccessKey       string        `env:"S3_ACCESS_KEY"`
	S3SecretKey       string        `env:"S3_SECRET_KEY"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "bot_database.db"
	c.WebhookPath = "/webhook"
	c.Port = 8080
	c.GRPCAddr = ":50051"
	c.APIBaseURL = "https://api.telegram.org"
	c.APITimeout = 60 * time.Second
	c.PollTimeout = 30 * time.Second
	c.MembershipTimeout = 5 * time.Second
	c.DeliveryTimeout = 10 * time.Second
	c.BroadcastInterval = 50 * time.Millisecond
	c.ConversationTTL = 30 * time.Minute
	c.ActiveWindow = 7 * 24 * time.Hour
	c.Workers = 16
	c.LogLevel = "info"
	c.S3Region = "us-east-1"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

// IsPostgres reports whether DatabaseDSN points at PostgreSQL.
func (c *Config) IsPostgres() bool {
	return hasAnyPrefix(c.DatabaseDSN, "postgres://", "postgresql://")
}

// ExportEnabled reports whether catalog export to object storage is configured.
func (c *Config) ExportEnabled() bool {
	return c.S3Bucket != ""
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if len(s) >= len(p) && s[:len(p)] == p {
			return true
		}
	}
	return false
}
