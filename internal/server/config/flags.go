package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/kinogate/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-t string   bot token
//	-a string   root operator ids, comma separated
//	-d string   database: SQLite path or postgres:// DSN
//	-w string   public webhook URL (empty: long polling)
//	-p int      HTTP port for the webhook server
//	-g string   gRPC health endpoint address
//	-i int      broadcast interval, milliseconds
//	-l string   log level
//
// Malformed values panic.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-t", "-a", "-d", "-w", "-p", "-g", "-i", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.BotToken, "t", config.BotToken, "bot token")
	adminIDs := fs.String("a", flagx.FormatIDList(config.AdminIDs), "root operator ids, comma separated")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database path or DSN")
	fs.StringVar(&config.WebhookURL, "w", config.WebhookURL, "public webhook URL")
	fs.IntVar(&config.Port, "p", config.Port, "webhook server port")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "gRPC health endpoint address")
	interval := fs.Int("i", int(config.BroadcastInterval.Milliseconds()), "broadcast interval (in milliseconds)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	ids, err := flagx.ParseIDList(*adminIDs)
	if err != nil {
		panic(err)
	}
	config.AdminIDs = ids
	config.BroadcastInterval = time.Duration(*interval) * time.Millisecond
}
