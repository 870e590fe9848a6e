// Package server wires the bot together: storage, the Bot API client, the
// business services, the dispatcher and the ingestion servers. It also owns
// startup tasks and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/kinogate/internal/logging"
	"github.com/dmitrijs2005/kinogate/internal/server/config"
	"github.com/dmitrijs2005/kinogate/internal/server/dispatcher"
	"github.com/dmitrijs2005/kinogate/internal/server/metrics"
	"github.com/dmitrijs2005/kinogate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/kinogate/internal/server/services"
	"github.com/dmitrijs2005/kinogate/internal/server/webhook"
	"github.com/dmitrijs2005/kinogate/internal/server/wizard"
	"github.com/dmitrijs2005/kinogate/internal/shared"
	"github.com/dmitrijs2005/kinogate/internal/telegram"

	gs "github.com/dmitrijs2005/kinogate/internal/server/grpc"
)

const (
	healthProbeInterval = 15 * time.Second
	drainTimeout        = 30 * time.Second
	userBacklog         = 32
)

var makeSecret = shared.MakeRandHexString

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	client     *telegram.Client
	admin      *services.AdminService
	dispatcher *dispatcher.Dispatcher
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	if c.BotToken == "" {
		return nil, errors.New("bot token is not set")
	}

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, rm, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	client := telegram.NewClient(c.APIBaseURL, c.BotToken, c.APITimeout, logger)

	roles := services.NewRoleChecker(db, rm, c.AdminIDs, logger)
	gate := services.NewAccessGate(db, rm, client, c.MembershipTimeout, logger)
	catalog := services.NewCatalogService(db, rm, c, logger)
	admin := services.NewAdminService(db, rm, roles, c.ActiveWindow, logger)
	broadcaster := services.NewBroadcaster(db, rm, client, c.BroadcastInterval, c.DeliveryTimeout, logger)

	wizards := wizard.New(wizard.Deps{
		Roles:       roles,
		Catalog:     catalog,
		Admin:       admin,
		Broadcaster: broadcaster,
		Platform:    client,
	}, c.ConversationTTL, logger)

	d := dispatcher.New(dispatcher.Deps{
		Gate:    gate,
		Roles:   roles,
		Catalog: catalog,
		Admin:   admin,
		Wizards: wizards,
	}, c.ActiveWindow, logger)

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		client:     client,
		admin:      admin,
		dispatcher: d,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// seedDefaultChannel registers the configured default group once.
func (app *App) seedDefaultChannel(ctx context.Context) {
	chatID := strings.TrimSpace(app.config.DefaultChannelID)
	if chatID == "" {
		return
	}
	added, err := app.admin.SeedGroup(ctx, chatID)
	if err != nil {
		app.logger.Error(ctx, "default channel seeding failed", "chat_id", chatID, "error", err)
		return
	}
	if added {
		app.logger.Info(ctx, "Default channel registered", "chat_id", chatID)
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.GRPCAddr, app.db.PingContext, healthProbeInterval, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc, q webhook.Submitter) {

	addr := ":" + strconv.Itoa(app.config.Port)
	s := webhook.NewServer(addr, app.config.WebhookPath, app.config.WebhookSecret, q, app.db.PingContext, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startPolling(ctx context.Context, cancelFunc context.CancelFunc, pool *telegram.Pool) {

	// getUpdates is refused while a webhook is set
	if err := app.client.DeleteWebhook(ctx, false); err != nil {
		app.logger.Error(ctx, "webhook removal failed", "error", err)
		cancelFunc()
		return
	}

	p := telegram.NewPoller(app.client, pool, app.config.PollTimeout, app.logger)
	if err := p.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)
	metrics.Register()
	app.seedDefaultChannel(ctx)

	pool := telegram.NewPool(app.dispatcher, app.client, app.config.Workers, userBacklog, app.logger)
	pool.Start(ctx)

	webhookMode := app.config.WebhookURL != ""
	if webhookMode {
		if err := app.registerWebhook(ctx); err != nil {
			app.logger.Error(ctx, "webhook setup failed", "error", err)
			cancelFunc()
			pool.Stop(drainTimeout)
			app.shutdown(ctx, false)
			return
		}
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		var q webhook.Submitter
		if webhookMode {
			q = pool
		}
		app.startHTTPServer(ctx, cancelFunc, q)
	}()

	if !webhookMode {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startPolling(ctx, cancelFunc, pool)
		}()
	}

	if app.config.GRPCAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	// producers are gone, let queued events finish
	pool.Stop(drainTimeout)

	app.shutdown(ctx, webhookMode)
}

func (app *App) shutdown(ctx context.Context, webhookMode bool) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if webhookMode {
		if err := app.client.DeleteWebhook(ctx, false); err != nil {
			app.logger.Warn(ctx, "webhook removal failed", "error", err)
		} else {
			app.logger.Info(ctx, "Webhook deleted")
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close failed", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}

// ensureWebhookSecret generates a per-process secret when none is configured,
// so the webhook route never accepts unauthenticated pushes.
func (app *App) ensureWebhookSecret() error {
	if app.config.WebhookSecret != "" {
		return nil
	}
	secret, err := makeSecret(32)
	if err != nil {
		return err
	}
	app.config.WebhookSecret = secret
	return nil
}

// registerWebhook points Telegram at the public endpoint. Nothing is
// registered without a secret.
func (app *App) registerWebhook(ctx context.Context) error {
	if err := app.ensureWebhookSecret(); err != nil {
		return fmt.Errorf("webhook secret: %w", err)
	}
	endpoint := webhookEndpoint(app.config.WebhookURL, app.config.WebhookPath)
	if err := app.client.SetWebhook(ctx, endpoint, app.config.WebhookSecret); err != nil {
		return fmt.Errorf("webhook registration: %w", err)
	}
	app.logger.Info(ctx, "Webhook set", "url", endpoint)
	return nil
}

// webhookEndpoint builds the public https URL Telegram pushes updates to.
// base may be a bare host or a full URL.
func webhookEndpoint(base, path string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(base, "https://"), "http://")
	host = strings.TrimRight(host, "/")
	if path == "" {
		path = "/webhook"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "https://" + host + path
}
