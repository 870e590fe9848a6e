package dispatcher

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/kinogate/internal/server/chat"
	"github.com/dmitrijs2005/kinogate/internal/server/models"
	"github.com/dmitrijs2005/kinogate/internal/server/services"
)

// AdminButton is the persistent reply-keyboard button shown to operators.
const AdminButton = "👨‍💼 Admin Panel"

const usersPageSize = 10

const (
	textJoinRequired    = "To use the bot, join the channels below and then press \"✅ Check\"."
	textStillBlocked    = "You have not joined all the channels yet."
	textThanks          = "✅ Thank you for subscribing!"
	textSendCode        = "Send a content code to receive it."
	textAccessDenied    = "⛔ You do not have access to this section."
	textUnknownCommand  = "Unknown command. Send a content code or /start."
	textNothingToCancel = "There is nothing to cancel."
	textCancelled       = "Cancelled."
	textInternalError   = "Something went wrong. Please try again later."
	textDeliveryFailed  = "Could not send the file. Please try again later."
	textAdminPanel      = "👨‍💼 Admin panel\n\nChoose an action:"
	textChannelGone     = "This channel was already removed."
	textAdminGone       = "This admin was already removed."
	textAdminRemoved    = "Admin removed."
	textCannotRevoke    = "This admin cannot be removed."
	textExportDisabled  = "Catalog export is not configured."
	textExportStarted   = "Preparing the export..."
)

func welcomeText(u models.User) string {
	name := u.FirstName
	if name == "" {
		name = u.DisplayName()
	}
	return fmt.Sprintf("👋 Hello, %s!\n\n%s", name, textSendCode)
}

func notFoundText(code string) string {
	return fmt.Sprintf("❌ Nothing found for code %s.", models.NormalizeCode(code))
}

func captionText(rec *models.ContentRecord) string {
	var b strings.Builder
	if rec.Title != "" {
		b.WriteString("🎬 " + rec.Title + "\n\n")
	}
	if rec.Description != "" {
		b.WriteString(rec.Description + "\n\n")
	}
	b.WriteString("🔑 Code: " + rec.Code)
	return b.String()
}

func statsText(st services.Stats, window time.Duration) string {
	days := int(window.Hours() / 24)
	return fmt.Sprintf("📊 Statistics\n\nUsers: %d\nActive in the last %d days: %d\nContent: %d\nMandatory channels: %d",
		st.Users, days, st.ActiveUsers, st.Content, st.Groups)
}

func channelsText(groups []models.Group, forDeletion bool) string {
	if len(groups) == 0 {
		return "No mandatory channels."
	}
	var b strings.Builder
	if forDeletion {
		b.WriteString("Choose a channel to remove:\n\n")
	} else {
		b.WriteString("📋 Mandatory channels:\n\n")
	}
	for i, g := range groups {
		fmt.Fprintf(&b, "%d. %s", i+1, g.Label())
		if g.Handle != "" && g.Handle != g.ChatID {
			fmt.Fprintf(&b, " (%s)", g.ChatID)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func channelRemovedText(g *models.Group) string {
	return "Removed " + g.Label()
}

func usersText(users []models.User, total int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👥 Users: %d\n", total)
	if len(users) > 0 {
		fmt.Fprintf(&b, "\nFirst %d:\n", len(users))
	}
	for i, u := range users {
		fmt.Fprintf(&b, "%d. %s", i+1, u.DisplayName())
		if u.UserName != "" {
			fmt.Fprintf(&b, " @%s", u.UserName)
		}
		fmt.Fprintf(&b, " (%d)\n", u.ID)
	}
	return strings.TrimRight(b.String(), "\n")
}

func adminsText(roots []int64, ops []models.Operator) string {
	var b strings.Builder
	b.WriteString("👮 Admins\n\nMain admins:\n")
	for _, id := range roots {
		fmt.Fprintf(&b, "• %d\n", id)
	}
	if len(ops) > 0 {
		b.WriteString("\nAdded admins:\n")
		for _, op := range ops {
			name := op.UserName
			if name == "" {
				name = "No name"
			}
			fmt.Fprintf(&b, "• %s (%d)\n", name, op.UserID)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func exportText(res *services.ExportResult) string {
	return fmt.Sprintf("📦 Catalog exported: %d records.\nDownload (valid for 15 minutes):\n%s", res.Records, res.URL)
}

func operatorReplyKeyboard() *chat.Keyboard {
	return &chat.Keyboard{Reply: true, Rows: [][]chat.Button{chat.Row(chat.Button{Text: AdminButton})}}
}

func joinKeyboard(groups []models.Group) *chat.Keyboard {
	rows := make([][]chat.Button, 0, len(groups)+1)
	for _, g := range groups {
		rows = append(rows, chat.Row(chat.Button{Text: "📢 " + g.Label(), URL: g.JoinURL()}))
	}
	rows = append(rows, chat.Row(chat.Button{Text: "✅ Check", Data: chat.CallbackCheckSubscription}))
	return &chat.Keyboard{Rows: rows}
}

func panelKeyboard(exportEnabled bool) *chat.Keyboard {
	rows := [][]chat.Button{
		chat.Row(
			chat.Button{Text: "📊 Statistics", Data: chat.CallbackAdminStats},
			chat.Button{Text: "👥 Users", Data: chat.CallbackUsers},
		),
		chat.Row(
			chat.Button{Text: "➕ Add channel", Data: chat.CallbackAddChannel},
			chat.Button{Text: "📋 Channels", Data: chat.CallbackListChannels},
		),
		chat.Row(chat.Button{Text: "🗑 Delete channel", Data: chat.CallbackDeleteChannel}),
		chat.Row(
			chat.Button{Text: "🎬 Add content", Data: chat.CallbackAddContent},
			chat.Button{Text: "❌ Delete content", Data: chat.CallbackDeleteContent},
		),
		chat.Row(chat.Button{Text: "📨 Broadcast", Data: chat.CallbackBroadcast}),
		chat.Row(
			chat.Button{Text: "👤 Add admin", Data: chat.CallbackAddAdmin},
			chat.Button{Text: "👮 Admins", Data: chat.CallbackListAdmins},
		),
	}
	if exportEnabled {
		rows = append(rows, chat.Row(chat.Button{Text: "📦 Export catalog", Data: chat.CallbackExport}))
	}
	rows = append(rows, chat.Row(chat.Button{Text: "✖️ Close", Data: chat.CallbackClose}))
	return &chat.Keyboard{Rows: rows}
}

func panelAction(chatID int64, exportEnabled bool) chat.Action {
	return chat.Action{Kind: chat.ActionText, ChatID: chatID, Text: textAdminPanel, Keyboard: panelKeyboard(exportEnabled)}
}

func backKeyboard() *chat.Keyboard {
	return &chat.Keyboard{Rows: [][]chat.Button{
		chat.Row(chat.Button{Text: "⬅️ Admin panel", Data: chat.CallbackAdminPanel}),
	}}
}

func deleteChannelsKeyboard(groups []models.Group) *chat.Keyboard {
	rows := make([][]chat.Button, 0, len(groups)+1)
	for _, g := range groups {
		rows = append(rows, chat.Row(chat.Button{
			Text: "❌ " + g.Label(),
			Data: chat.CallbackDeleteChannelPrefix + strconv.FormatInt(g.ID, 10),
		}))
	}
	rows = append(rows, backKeyboard().Rows...)
	return &chat.Keyboard{Rows: rows}
}

// adminsKeyboard offers a remove button for every stored operator except the
// viewer.
func adminsKeyboard(ops []models.Operator, viewer int64) *chat.Keyboard {
	rows := make([][]chat.Button, 0, len(ops)+1)
	for _, op := range ops {
		if op.UserID == viewer {
			continue
		}
		label := op.UserName
		if label == "" {
			label = strconv.FormatInt(op.UserID, 10)
		}
		rows = append(rows, chat.Row(chat.Button{
			Text: "❌ " + label,
			Data: chat.CallbackDeleteAdminPrefix + strconv.FormatInt(op.UserID, 10),
		}))
	}
	rows = append(rows, backKeyboard().Rows...)
	return &chat.Keyboard{Rows: rows}
}
