package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/kinogate/internal/logging"
	"github.com/dmitrijs2005/kinogate/internal/maintenance"
	"github.com/dmitrijs2005/kinogate/internal/telegram"
)

func main() {

	token := flag.String("t", os.Getenv("BOT_TOKEN"), "bot token (prompted when empty)")
	baseURL := flag.String("api", os.Getenv("API_BASE_URL"), "Bot API base URL")
	flag.Parse()

	tok, err := maintenance.ReadToken(*token, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := telegram.NewClient(*baseURL, tok, 20*time.Second, logging.Nop{})

	if err := maintenance.ResetWebhook(ctx, client, os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}
