// Package maintenance holds one-off operational tasks run outside the bot
// process.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/kinogate/internal/shared"
	"golang.org/x/term"
)

// readSecret is a test seam for term.ReadPassword.
var readSecret = term.ReadPassword

// BotAPI is the part of the Bot API the reset task calls.
type BotAPI interface {
	GetMe(ctx context.Context) (string, error)
	DeleteWebhook(ctx context.Context, dropPending bool) error
}

// ReadToken returns token when set, otherwise prompts on w and reads the
// token from the terminal without echo.
func ReadToken(token string, w io.Writer) (string, error) {
	if token = strings.TrimSpace(token); token != "" {
		return token, nil
	}
	if _, err := fmt.Fprint(w, "Enter bot token: "); err != nil {
		return "", err
	}
	b, err := readSecret(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	token = strings.TrimSpace(string(b))
	shared.WipeByteArray(b)
	if token == "" {
		return "", errors.New("empty token")
	}
	return token, nil
}

// ResetWebhook removes the bot's webhook and drops the updates Telegram has
// queued for it, so the next start begins from a clean state.
func ResetWebhook(ctx context.Context, api BotAPI, w io.Writer) error {
	name, err := api.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("token check failed: %w", err)
	}
	fmt.Fprintf(w, "Bot: @%s\n", name)

	if err := api.DeleteWebhook(ctx, true); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	fmt.Fprintln(w, "Webhook removed, pending updates dropped.")
	return nil
}
