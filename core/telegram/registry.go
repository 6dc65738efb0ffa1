package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/m3rciful/iskra/core/logger"
	"github.com/m3rciful/iskra/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// InputKind classifies freeform messages for state-based dispatch.
type InputKind string

const (
	// InputText is a plain text message.
	InputText InputKind = "text"
	// InputPhoto is a photo message.
	InputPhoto InputKind = "photo"
	// InputMedia covers every other attachment (video, document, voice, sticker...).
	InputMedia InputKind = "media"
)

var (
	// ErrRegistrySealed is returned by registrations after Seal.
	ErrRegistrySealed = errors.New("telegram: registry sealed")
	// ErrInvalidRegistration reports an empty key or nil handler.
	ErrInvalidRegistration = errors.New("telegram: invalid registration")
	// ErrDuplicate reports a key registered twice.
	ErrDuplicate = errors.New("telegram: duplicate registration")
)

type freeformKey struct {
	state string
	kind  InputKind
}

// Registry holds the dispatch tables of the bot. Tables are filled during
// startup and become read-only after Seal; lookups never lock, so they must
// not run before Seal.
type Registry struct {
	mu     sync.Mutex
	sealed atomic.Bool

	commands         map[string]commands.Command
	aliases          map[string]string
	shortcuts        map[string]tele.HandlerFunc
	callbacks        map[string]tele.HandlerFunc
	freeform         map[freeformKey]tele.HandlerFunc
	callbackNotFound tele.HandlerFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		aliases:   make(map[string]string),
		shortcuts: make(map[string]tele.HandlerFunc),
		callbacks: make(map[string]tele.HandlerFunc),
		freeform:  make(map[freeformKey]tele.HandlerFunc),
	}
}

func (r *Registry) begin(kind, key string, valid bool) error {
	if r.sealed.Load() {
		logger.Event(context.Background(), "tg.wire", slog.LevelWarn, "register."+kind+".sealed",
			slog.String("key", key),
		)
		return fmt.Errorf("%w: %s %q", ErrRegistrySealed, kind, key)
	}
	if !valid {
		logger.Event(context.Background(), "tg.wire", slog.LevelWarn, "register."+kind+".skip",
			slog.String("key", key),
			slog.String("reason", "invalid"),
		)
		return fmt.Errorf("%w: %s %q", ErrInvalidRegistration, kind, key)
	}
	return nil
}

func duplicate(kind, key string) error {
	logger.Event(context.Background(), "tg.wire", slog.LevelWarn, "register."+kind+".duplicate",
		slog.String("key", key),
	)
	return fmt.Errorf("%w: %s %q", ErrDuplicate, kind, key)
}

// RegisterCommand adds a command. Names are matched case-insensitively and
// without the leading slash.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	key := commands.Normalize(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin("command", name, key != "" && cmd.Handler != nil && cmd.Description != ""); err != nil {
		return err
	}
	if _, exists := r.commands[key]; exists {
		return duplicate("command", key)
	}
	if _, exists := r.aliases[key]; exists {
		return duplicate("command", key)
	}
	r.commands[key] = cmd
	for _, alias := range cmd.Aliases {
		if a := commands.Normalize(alias); a != "" && a != key {
			r.aliases[a] = key
		}
	}
	return nil
}

// RegisterShortcut binds an exact reply-keyboard label to a handler.
func (r *Registry) RegisterShortcut(label string, handler tele.HandlerFunc) error {
	key := strings.TrimSpace(label)
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin("shortcut", label, key != "" && handler != nil); err != nil {
		return err
	}
	if _, exists := r.shortcuts[key]; exists {
		return duplicate("shortcut", key)
	}
	r.shortcuts[key] = handler
	return nil
}

// RegisterCallback binds a callback data prefix to a handler.
func (r *Registry) RegisterCallback(prefix string, handler tele.HandlerFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin("callback", prefix, prefix != "" && !strings.Contains(prefix, ":") && handler != nil); err != nil {
		return err
	}
	if _, exists := r.callbacks[prefix]; exists {
		return duplicate("callback", prefix)
	}
	r.callbacks[prefix] = handler
	return nil
}

// RegisterFreeform binds a (state key, input kind) pair to a handler.
func (r *Registry) RegisterFreeform(stateKey string, kind InputKind, handler tele.HandlerFunc) error {
	key := freeformKey{state: stateKey, kind: kind}
	name := stateKey + "/" + string(kind)
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin("freeform", name, stateKey != "" && kind != "" && handler != nil); err != nil {
		return err
	}
	if _, exists := r.freeform[key]; exists {
		return duplicate("freeform", name)
	}
	r.freeform[key] = handler
	return nil
}

// SetCallbackNotFound sets the fallback for callbacks with an unknown prefix.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin("callback_fallback", "*", h != nil); err != nil {
		return err
	}
	r.callbackNotFound = h
	return nil
}

// Seal freezes the tables. It is safe to call more than once.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed.Swap(true) {
		return
	}
	logger.Event(context.Background(), "tg.wire", slog.LevelInfo, "register.sealed",
		slog.Int("commands", len(r.commands)),
		slog.Int("shortcuts", len(r.shortcuts)),
		slog.Int("callbacks", len(r.callbacks)),
		slog.Int("freeform", len(r.freeform)),
	)
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	return r.sealed.Load()
}

// Command resolves a normalised command name or alias.
func (r *Registry) Command(name string) (string, commands.Command, bool) {
	key := commands.Normalize(name)
	if cmd, ok := r.commands[key]; ok {
		return key, cmd, true
	}
	if canonical, ok := r.aliases[key]; ok {
		return canonical, r.commands[canonical], true
	}
	return "", commands.Command{}, false
}

// LookupCommand parses text as "/name@bot args" and resolves the command.
func (r *Registry) LookupCommand(text string) (name, args string, cmd commands.Command, ok bool) {
	parsed, args, isCmd := commands.Parse(text)
	if !isCmd {
		return "", "", commands.Command{}, false
	}
	name, cmd, ok = r.Command(parsed)
	if !ok {
		return "", "", commands.Command{}, false
	}
	return name, args, cmd, true
}

// Shortcut resolves a reply-keyboard label.
func (r *Registry) Shortcut(text string) (tele.HandlerFunc, bool) {
	h, ok := r.shortcuts[strings.TrimSpace(text)]
	return h, ok
}

// Callback resolves a callback prefix.
func (r *Registry) Callback(prefix string) (tele.HandlerFunc, bool) {
	h, ok := r.callbacks[prefix]
	return h, ok
}

// CallbackNotFound returns the fallback callback handler, possibly nil.
func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	return r.callbackNotFound
}

// Freeform resolves the handler for an input kind in the given state. Photos
// fall back to the state's media handler.
func (r *Registry) Freeform(stateKey string, kind InputKind) (tele.HandlerFunc, bool) {
	if h, ok := r.freeform[freeformKey{state: stateKey, kind: kind}]; ok {
		return h, true
	}
	if kind == InputPhoto {
		h, ok := r.freeform[freeformKey{state: stateKey, kind: InputMedia}]
		return h, ok
	}
	return nil, false
}

// ListCommands returns the command menu, optionally without hidden and admin-only commands.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var list []tele.Command
	for name, meta := range r.commands {
		if visibleOnly && (meta.Hidden || meta.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: name, Description: meta.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// ListCallbacks returns sorted prefixes (for diagnostics).
func (r *Registry) ListCallbacks() []string {
	names := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// InitBotCommands sets the Telegram bot commands shown in the command menu.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	cmds := reg.ListCommands(true)
	if err := bot.SetCommands(cmds); err != nil {
		logger.Event(context.Background(), "tg.wire", slog.LevelError, "register.commands.set_failed",
			slog.String("err", err.Error()),
		)
	}
}
