package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/kinogate/internal/server/services"
)

var allowedUpdates = []string{"message", "callback_query"}

// CheckMembership reports whether userID belongs to chatID. Left and kicked
// users are non-members; statuses the bot does not recognise are Unknown.
func (c *Client) CheckMembership(ctx context.Context, chatID string, userID int64) (services.Membership, error) {
	res, err := c.call(ctx, "getChatMember", map[string]any{
		"chat_id": chatID,
		"user_id": userID,
	})
	if err != nil {
		return services.MembershipUnknown, err
	}
	return membershipFromStatus(res.Get("status").String(), res.Get("is_member").Bool()), nil
}

func membershipFromStatus(status string, isMember bool) services.Membership {
	switch status {
	case "creator", "administrator", "member":
		return services.MembershipMember
	case "restricted":
		if isMember {
			return services.MembershipMember
		}
		return services.MembershipNotMember
	case "left", "kicked":
		return services.MembershipNotMember
	default:
		return services.MembershipUnknown
	}
}

// Deliver copies the referenced message into the recipient's private chat.
func (c *Client) Deliver(ctx context.Context, userID int64, p services.BroadcastPayload) error {
	_, err := c.call(ctx, "copyMessage", map[string]any{
		"chat_id":      userID,
		"from_chat_id": p.FromChatID,
		"message_id":   p.MessageID,
	})
	return err
}

// ProbeChat sends a chat action to chatID, which only succeeds when the bot
// is a member allowed to post there, and returns the chat's public handle.
func (c *Client) ProbeChat(ctx context.Context, chatID string) (string, error) {
	if _, err := c.call(ctx, "sendChatAction", map[string]any{
		"chat_id": chatID,
		"action":  "typing",
	}); err != nil {
		return "", err
	}

	res, err := c.call(ctx, "getChat", map[string]any{"chat_id": chatID})
	if err != nil {
		c.logger.Warn(ctx, "getChat failed after successful probe", "chat_id", chatID, "error", err)
		return "", nil
	}
	if u := res.Get("username").String(); u != "" {
		return "@" + u, nil
	}
	return "", nil
}

// UserName returns "First Last" for userID, or "@username" when the user has
// no first name.
func (c *Client) UserName(ctx context.Context, userID int64) (string, error) {
	res, err := c.call(ctx, "getChat", map[string]any{"chat_id": userID})
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(res.Get("first_name").String() + " " + res.Get("last_name").String())
	if name == "" {
		if u := res.Get("username").String(); u != "" {
			return "@" + u, nil
		}
	}
	return name, nil
}

// GetMe returns the bot's own username.
func (c *Client) GetMe(ctx context.Context) (string, error) {
	res, err := c.call(ctx, "getMe", map[string]any{})
	if err != nil {
		return "", err
	}
	return res.Get("username").String(), nil
}

// GetUpdates long-polls for updates starting at offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	res, err := c.call(ctx, "getUpdates", map[string]any{
		"offset":          offset,
		"timeout":         int(timeout.Seconds()),
		"allowed_updates": allowedUpdates,
	})
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal([]byte(res.Raw), &updates); err != nil {
		return nil, fmt.Errorf("telegram getUpdates: decode: %w", err)
	}
	return updates, nil
}

// SetWebhook registers url for push delivery. Telegram echoes secret in the
// X-Telegram-Bot-Api-Secret-Token header of every push.
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	params := map[string]any{
		"url":             url,
		"allowed_updates": allowedUpdates,
	}
	if secret != "" {
		params["secret_token"] = secret
	}
	_, err := c.call(ctx, "setWebhook", params)
	return err
}

// DeleteWebhook switches the bot back to getUpdates, optionally discarding
// updates queued on the server.
func (c *Client) DeleteWebhook(ctx context.Context, dropPending bool) error {
	_, err := c.call(ctx, "deleteWebhook", map[string]any{"drop_pending_updates": dropPending})
	return err
}
