// Package telegram is a chat front-end for the shopping list: household
// members on the allow list read, sync and tick off items from Telegram.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"family-planner/internal/config"
	"family-planner/internal/identity"
	"family-planner/internal/metrics"
	"family-planner/internal/planner"
	"family-planner/internal/shopping"
)

// commandTimeout bounds the work done for one update.
const commandTimeout = 20 * time.Second

// ShoppingService is the shopping API the bot drives.
type ShoppingService interface {
	GetList(ctx context.Context, actor identity.Actor, week string) (shopping.List, error)
	Sync(ctx context.Context, actor identity.Actor, week string) (shopping.List, error)
	Toggle(ctx context.Context, actor identity.Actor, week, name, unit string, checked bool) (bool, error)
	AddManualItem(ctx context.Context, actor identity.Actor, week, name, secondaryName string, quantity float64, unit string) error
	DeleteItem(ctx context.Context, actor identity.Actor, week, name, unit string) error
}

// SyncHistory reports recent sync activity for /stats.
type SyncHistory interface {
	GetDailySyncs(ctx context.Context, days int) ([]metrics.DailySyncs, error)
}

// Sender delivers replies. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot wraps the Telegram API and the shopping service.
type Bot struct {
	sender   Sender
	shopping ShoppingService
	history  SyncHistory
	access   config.TelegramConfig
	dataPath string
	now      func() time.Time
	logger   *slog.Logger
}

// Options carries the optional parts of a Bot.
type Options struct {
	History  SyncHistory
	DataPath string
	Logger   *slog.Logger
}

// NewBot initializes the Telegram API and registers the webhook.
func NewBot(cfg config.TelegramConfig, shoppingSvc ShoppingService, opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	b := New(api, shoppingSvc, cfg, opts)
	b.logger.Info("telegram bot authorized", "account", api.Self.UserName)

	if cfg.WebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.WebhookURL)
		if err != nil {
			return nil, fmt.Errorf("failed to build webhook %s: %w", cfg.WebhookURL, err)
		}
		resp, err := api.Request(wh)
		if err != nil {
			return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.WebhookURL, err)
		}
		b.logger.Info("telegram webhook set", "description", resp.Description)
	}
	return b, nil
}

// New creates a Bot on an existing sender. Only the users listed in cfg are
// answered.
func New(sender Sender, shoppingSvc ShoppingService, cfg config.TelegramConfig, opts Options) *Bot {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bot{
		sender:   sender,
		shopping: shoppingSvc,
		history:  opts.History,
		access:   cfg,
		dataPath: opts.DataPath,
		now:      time.Now,
		logger:   logger.With("component", "telegram"),
	}
	return b
}

// ServeHTTP handles one webhook update. Updates are answered inline; the
// shopping operations are short enough to fit in Telegram's webhook window.
func (b *Bot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.logger.Warn("error parsing update", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	if update.Message == nil || update.Message.From == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()
	b.HandleMessage(ctx, update.Message)
}

// HandleMessage answers one message from an allowed user.
func (b *Bot) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	user, ok := b.access.TelegramActor(msg.From.ID)
	if !ok {
		b.logger.Warn("unauthorized access attempt", "telegram_id", msg.From.ID, "username", msg.From.UserName)
		return
	}
	actor := identity.Actor{UserID: user.UserID, FamilyID: user.FamilyID}

	var reply string
	switch msg.Command() {
	case "list":
		reply = b.handleList(ctx, actor, msg.CommandArguments(), false)
	case "sync", "refresh":
		reply = b.handleList(ctx, actor, msg.CommandArguments(), true)
	case "add":
		reply = b.handleAdd(ctx, actor, msg.CommandArguments())
	case "check":
		reply = b.handleCheck(ctx, actor, msg.CommandArguments(), true)
	case "uncheck":
		reply = b.handleCheck(ctx, actor, msg.CommandArguments(), false)
	case "remove":
		reply = b.handleRemove(ctx, actor, msg.CommandArguments())
	case "stats":
		reply = b.handleStats(ctx)
	default:
		reply = helpText
	}
	b.reply(msg.Chat.ID, reply)
}

const helpText = "🛒 *Shopping list bot*\n\n" +
	"/list [week] - show the list\n" +
	"/sync [week] - rebuild it from the meal plan\n" +
	"/add [qty] [unit] <name> - add an item\n" +
	"/check <name> [unit] - mark as bought\n" +
	"/uncheck <name> [unit] - unmark\n" +
	"/remove <name> [unit] - delete an item\n" +
	"/stats - recent sync activity\n\n" +
	"Weeks are YYYY-MM-DD or YYYY-Www; the current week is the default."

func (b *Bot) currentWeek() string {
	return planner.FormatWeek(planner.WeekStart(b.now()))
}

func (b *Bot) weekArg(args string) string {
	if w := strings.TrimSpace(args); w != "" {
		return w
	}
	return b.currentWeek()
}

func (b *Bot) handleList(ctx context.Context, actor identity.Actor, args string, sync bool) string {
	week := b.weekArg(args)
	var (
		list shopping.List
		err  error
	)
	if sync {
		list, err = b.shopping.Sync(ctx, actor, week)
	} else {
		list, err = b.shopping.GetList(ctx, actor, week)
	}
	if err != nil {
		return b.errorText(err)
	}
	return formatList(list)
}

func (b *Bot) handleAdd(ctx context.Context, actor identity.Actor, args string) string {
	cmd, err := parseAdd(args)
	if err != nil {
		return "❌ " + err.Error() + "\nUsage: /add [qty] [unit] <name>"
	}
	week := b.currentWeek()
	if err := b.shopping.AddManualItem(ctx, actor, week, cmd.name, "", cmd.quantity, cmd.unit); err != nil {
		return b.errorText(err)
	}
	return fmt.Sprintf("➕ Added %s", escape(describeAmount(cmd.name, cmd.quantity, cmd.unit)))
}

func (b *Bot) handleCheck(ctx context.Context, actor identity.Actor, args string, checked bool) string {
	name, unit := splitNameUnit(args)
	if name == "" {
		return "❌ Which item?\nUsage: /check <name> [unit]"
	}
	week := b.currentWeek()
	unit, reply := b.resolveUnit(ctx, actor, week, name, unit)
	if reply != "" {
		return reply
	}

	state, err := b.shopping.Toggle(ctx, actor, week, name, unit, checked)
	if err != nil {
		return b.errorText(err)
	}
	if state {
		return fmt.Sprintf("✅ %s", escape(name))
	}
	return fmt.Sprintf("⬜ %s", escape(name))
}

func (b *Bot) handleRemove(ctx context.Context, actor identity.Actor, args string) string {
	name, unit := splitNameUnit(args)
	if name == "" {
		return "❌ Which item?\nUsage: /remove <name> [unit]"
	}
	week := b.currentWeek()
	unit, reply := b.resolveUnit(ctx, actor, week, name, unit)
	if reply != "" {
		return reply
	}

	if err := b.shopping.DeleteItem(ctx, actor, week, name, unit); err != nil {
		return b.errorText(err)
	}
	return fmt.Sprintf("🗑 Removed %s", escape(name))
}

// resolveUnit fills in the unit of the only listed item called name. A
// non-empty reply means the command cannot go ahead.
func (b *Bot) resolveUnit(ctx context.Context, actor identity.Actor, week, name, unit string) (string, string) {
	if unit != "" {
		return unit, ""
	}
	list, err := b.shopping.GetList(ctx, actor, week)
	if err != nil {
		return "", b.errorText(err)
	}
	matches := matchingItems(list, name)
	switch len(matches) {
	case 0:
		return "", fmt.Sprintf("🤷 %s is not on the list", escape(name))
	case 1:
		return matches[0].Unit, ""
	}
	units := make([]string, 0, len(matches))
	for _, m := range matches {
		units = append(units, m.Unit)
	}
	return "", fmt.Sprintf("Which unit? %s is listed as %s", escape(name), escape(strings.Join(units, ", ")))
}

func (b *Bot) handleStats(ctx context.Context) string {
	var sb strings.Builder
	sb.WriteString("📊 *Sync & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Syncs*\n")
	if b.history != nil {
		days, err := b.history.GetDailySyncs(ctx, 7)
		if err != nil {
			b.logger.Error("failed to fetch sync history", "error", err)
			sb.WriteString("_unavailable_\n")
		} else if len(days) == 0 {
			sb.WriteString("_No data yet_\n")
		}
		for _, d := range days {
			sb.WriteString(fmt.Sprintf("• *%s*: %d syncs, %d written, %d removed (avg %.0fms)\n",
				d.Date, d.Runs, d.Upserted, d.Deleted, d.AvgLatencyMS))
		}
	} else {
		sb.WriteString("_disabled_\n")
	}

	health := metrics.GetSysHealth(b.dataPath)
	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))
	return sb.String()
}

func (b *Bot) errorText(err error) string {
	msg := userMessage(err)
	if msg == "" {
		b.logger.Error("command failed", "error", err)
		msg = "failed to update shopping list, please try again"
	}
	return "❌ " + escape(msg)
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Warn("failed to send reply", "chat_id", chatID, "error", err)
	}
}
