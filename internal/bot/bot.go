// Package bot wires the Telegram transport, the router, and the card flows.
package bot

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/sayu-dev/showcase-bot/internal/bot/handlers"
	"github.com/sayu-dev/showcase-bot/internal/bot/keyboard"
	apperrors "github.com/sayu-dev/showcase-bot/internal/errors"
	"github.com/sayu-dev/showcase-bot/internal/flow"
	"github.com/sayu-dev/showcase-bot/internal/gamedata"
	"github.com/sayu-dev/showcase-bot/internal/idempotency"
	"github.com/sayu-dev/showcase-bot/internal/middleware"
	"github.com/sayu-dev/showcase-bot/internal/repository"
	"github.com/sayu-dev/showcase-bot/internal/session"
	"github.com/sayu-dev/showcase-bot/pkg/config"
)

// Bot wraps telebot.Bot with the application dependencies required for
// handling updates.
type Bot struct {
	telebot            *telebot.Bot
	log                *slog.Logger
	cfg                config.Config
	router             *Router
	registry           *session.Registry
	machine            *flow.Machine
	templates          *flow.TemplateFlow
	keyboard           *keyboard.Builder
	errHandler         *apperrors.Handler
	idempotencyManager idempotency.Manager
	prefs              repository.PreferenceRepository
}

// New builds a Telegram bot instance configured according to the application
// settings.
func New(
	cfg config.Config,
	log *slog.Logger,
	prefs repository.PreferenceRepository,
	portraits repository.PortraitRepository,
	provider gamedata.RosterProvider,
	renderer gamedata.Renderer,
	registry *session.Registry,
	idempotencyManager idempotency.Manager,
) (*Bot, error) {
	settings := telebot.Settings{
		Token: cfg.Bot.Token,
	}

	if cfg.Bot.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen: cfg.Server.Port,
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.Bot.Timeout,
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	kb := keyboard.NewBuilder(log)
	transport := NewTelegramTransport(tb, log)
	machine := flow.NewMachine(prefs, portraits, provider, renderer, registry, transport, kb, log)
	templates := flow.NewTemplateFlow(prefs, transport, kb, log)
	router := NewRouter(log)
	errHandler := apperrors.NewHandler(log, cfg.Sentry.Enabled)

	b := &Bot{
		telebot:            tb,
		log:                log,
		cfg:                cfg,
		router:             router,
		registry:           registry,
		machine:            machine,
		templates:          templates,
		keyboard:           kb,
		errHandler:         errHandler,
		idempotencyManager: idempotencyManager,
		prefs:              prefs,
	}

	b.setupRouter()
	b.registerTelebotHandlers()

	return b, nil
}

// Start runs the Telegram bot event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the Telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	b.log.Info("stopping telegram bot...")
	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such
// as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

func (b *Bot) setupRouter() {
	b.router.Use(RecoveryMiddleware(b.log, b.errHandler))
	b.router.Use(middleware.Idempotency(b.idempotencyManager, b.log))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(middleware.Metrics)

	b.router.RegisterCommand(CommandStart, handlers.NewStartHandler(b.log))
	b.router.RegisterCommand(CommandHelp, handlers.NewStartHandler(b.log))
	b.router.RegisterCommand(CommandLink, handlers.NewLinkHandler(b.machine, b.registry, b.log))
	b.router.RegisterCommand(CommandUnlink, handlers.NewUnlinkHandler(b.prefs, b.log))
	b.router.RegisterCommand(CommandProfile, handlers.NewProfileHandler(b.machine, b.log))
	b.router.RegisterCommand(CommandTemplate, handlers.NewTemplateHandler(b.templates, b.log))

	b.router.SetDefault(handlers.NewAccountInputHandler(b.machine, b.registry, b.log))

	b.router.RegisterCallback(keyboard.ActionConfirmSave, handlers.HandleConfirmSave(b.machine, b.log))
	b.router.RegisterCallback(keyboard.ActionConfirmDiscard, handlers.HandleConfirmDiscard(b.machine, b.log))
	b.router.RegisterCallback(keyboard.ActionViewDetail, handlers.HandleViewDetail(b.machine, b.log))
	b.router.RegisterCallback(keyboard.ActionGoBack, handlers.HandleGoBack(b.machine, b.log))
	b.router.RegisterCallback(keyboard.ActionTemplateMenu, handlers.HandleTemplateMenu(b.templates, b.log))
	b.router.RegisterCallback(keyboard.ActionSelectTemplate, handlers.HandleSelectTemplate(b.templates, b.log))
}

func (b *Bot) registerTelebotHandlers() {
	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
}
