package bot

import (
	"log/slog"
	"strings"
	"sync"

	telebot "gopkg.in/telebot.v3"

	"github.com/sayu-dev/showcase-bot/internal/bot/handlers"
	"github.com/sayu-dev/showcase-bot/internal/bot/keyboard"
)

const invalidSelectionText = "Invalid selection."

// Router dispatches commands, plain text, and decoded callback payloads.
//
// Callback data is decoded exactly once here; malformed payloads and payloads
// whose embedded owner is not the acting user are both answered with the same
// generic notice, before any handler or session state is touched.
type Router struct {
	mu             sync.RWMutex
	commands       map[string]handlers.Handler
	callbacks      map[string]handlers.CallbackHandler
	defaultHandler handlers.Handler
	middlewares    []handlers.Middleware
	log            *slog.Logger
}

// NewRouter builds a Router with empty registries.
func NewRouter(log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		commands:    make(map[string]handlers.Handler),
		callbacks:   make(map[string]handlers.CallbackHandler),
		middlewares: make([]handlers.Middleware, 0),
		log:         log,
	}
}

// RegisterCommand registers a handler for a bot command.
func (r *Router) RegisterCommand(cmd string, h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[cmd] = h
}

// RegisterCallback registers a handler for a callback action.
func (r *Router) RegisterCallback(action string, h handlers.CallbackHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks[action] = h
}

// Use appends a middleware to the chain.
func (r *Router) Use(mw handlers.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = append(r.middlewares, mw)
}

// SetDefault sets the fallback handler for non-command text messages.
func (r *Router) SetDefault(h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultHandler = h
}

// Route directs the incoming update to the appropriate handler.
func (r *Router) Route(c telebot.Context) error {
	if c == nil {
		return nil
	}

	if callback := c.Callback(); callback != nil {
		return r.handleCallback(c, callback.Data)
	}

	return r.handleMessage(c)
}

func (r *Router) handleCallback(c telebot.Context, data string) error {
	p, err := keyboard.Decode(data)
	if err != nil {
		r.log.Info("rejecting malformed callback payload", slog.String("data", data))
		return c.Respond(&telebot.CallbackResponse{Text: invalidSelectionText})
	}

	// First authorization line: a payload that names an owner is only valid
	// from that owner. The session registry re-checks ownership afterwards.
	if p.HasOwner() && (c.Sender() == nil || c.Sender().ID != p.OwnerID) {
		return c.Respond(&telebot.CallbackResponse{Text: invalidSelectionText})
	}

	handler := r.findCallbackHandler(p.Action)
	if handler == nil {
		r.log.Info("no callback handler found", slog.String("action", p.Action))
		return c.Respond(&telebot.CallbackResponse{Text: invalidSelectionText})
	}

	exec := handlers.Handler(func(ctx telebot.Context) error {
		return handler(ctx, p)
	})

	return r.executeHandler(exec, c)
}

func (r *Router) handleMessage(c telebot.Context) error {
	if cmd := commandOf(c.Text()); cmd != "" {
		if handler := r.getCommandHandler(cmd); handler != nil {
			return r.executeHandler(handler, c)
		}
	}

	if handler := r.getDefaultHandler(); handler != nil {
		return r.executeHandler(handler, c)
	}

	return nil
}

// commandOf extracts the command token from a message, dropping arguments
// and any @botname suffix. Non-command text yields "".
func commandOf(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}

	cmd := text
	if idx := strings.IndexAny(cmd, " \t\n"); idx != -1 {
		cmd = cmd[:idx]
	}
	if idx := strings.Index(cmd, "@"); idx != -1 {
		cmd = cmd[:idx]
	}

	return cmd
}

func (r *Router) executeHandler(h handlers.Handler, c telebot.Context) error {
	wrapped := r.applyMiddlewares(h)
	if wrapped == nil {
		return nil
	}
	return wrapped(c)
}

func (r *Router) findCallbackHandler(action string) handlers.CallbackHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.callbacks[action]
}

func (r *Router) getCommandHandler(cmd string) handlers.Handler {
	r.mu.RLock()
	handler := r.commands[cmd]
	r.mu.RUnlock()
	return handler
}

func (r *Router) getDefaultHandler() handlers.Handler {
	r.mu.RLock()
	handler := r.defaultHandler
	r.mu.RUnlock()
	return handler
}

// applyMiddlewares wraps the handler with all registered middlewares.
func (r *Router) applyMiddlewares(h handlers.Handler) handlers.Handler {
	if h == nil {
		return nil
	}

	middlewares := r.middlewaresSnapshot()
	wrapped := h
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}

	return wrapped
}

func (r *Router) middlewaresSnapshot() []handlers.Middleware {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.middlewares) == 0 {
		return nil
	}

	snapshot := make([]handlers.Middleware, len(r.middlewares))
	copy(snapshot, r.middlewares)
	return snapshot
}
