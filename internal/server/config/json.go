package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/kinogate/internal/flagx"
	"github.com/dmitrijs2005/kinogate/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "50ms" and integer nanoseconds are accepted.
// Zero values are treated as "not set" and leave the current value alone.
type JsonConfig struct {
	BotToken          string         `json:"bot_token"`
	AdminIDs          []int64        `json:"admin_ids"`
	DatabaseDSN       string         `json:"database_dsn"`
	DefaultChannelID  string         `json:"default_channel_id"`
	WebhookURL        string         `json:"webhook_url"`
	WebhookPath       string         `json:"webhook_path"`
	WebhookSecret     string         `json:"webhook_secret"`
	Port              int            `json:"port"`
	GRPCAddr          string         `json:"grpc_addr"`
	APIBaseURL        string         `json:"api_base_url"`
	APITimeout        timex.Duration `json:"api_timeout"`
	PollTimeout       timex.Duration `json:"poll_timeout"`
	MembershipTimeout timex.Duration `json:"membership_timeout"`
	DeliveryTimeout   timex.Duration `json:"delivery_timeout"`
	BroadcastInterval timex.Duration `json:"broadcast_interval"`
	ConversationTTL   timex.Duration `json:"conversation_ttl"`
	ActiveWindow      timex.Duration `json:"active_window"`
	Workers           int            `json:"workers"`
	LogLevel          string         `json:"log_level"`
	S3Bucket          string         `json:"s3_bucket"`
	S3Region          string         `json:"s3_region"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint"`
	S3AccessKey       string         `json:"s3_access_key"`
	S3SecretKey       string         `json:"s3_secret_key"`
}

// parseJson loads the file named by -c/-config into config. Without the flag
// nothing happens. An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.BotToken, c.BotToken)
	if len(c.AdminIDs) > 0 {
		config.AdminIDs = c.AdminIDs
	}
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.DefaultChannelID, c.DefaultChannelID)
	setString(&config.WebhookURL, c.WebhookURL)
	setString(&config.WebhookPath, c.WebhookPath)
	setString(&config.WebhookSecret, c.WebhookSecret)
	setInt(&config.Port, c.Port)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.APIBaseURL, c.APIBaseURL)
	setDuration(&config.APITimeout, c.APITimeout)
	setDuration(&config.PollTimeout, c.PollTimeout)
	setDuration(&config.MembershipTimeout, c.MembershipTimeout)
	setDuration(&config.DeliveryTimeout, c.DeliveryTimeout)
	setDuration(&config.BroadcastInterval, c.BroadcastInterval)
	setDuration(&config.ConversationTTL, c.ConversationTTL)
	setDuration(&config.ActiveWindow, c.ActiveWindow)
	setInt(&config.Workers, c.Workers)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
}
