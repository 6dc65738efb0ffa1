package telegram

import (
	"strings"

	coreconfig "github.com/m3rciful/iskra/core/config"
	"github.com/m3rciful/iskra/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// MiddlewareOptions carries the hooks of the default chain.
type MiddlewareOptions struct {
	// OnLimited answers a rate-limited update, e.g. with a "slow down" toast.
	OnLimited func(tele.Context) error
	// RateLimited is told the kind of every dropped update.
	RateLimited func(kind string)
	Updates     middleware.UpdateObserver
}

// DefaultMiddlewares builds the shared middleware chain for bots.
func DefaultMiddlewares(cfg *coreconfig.Config, opts MiddlewareOptions) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}
	if opts.Updates != nil {
		mws = append(mws, Middleware{Name: "metrics", Use: middleware.MetricsMiddleware(opts.Updates)})
	}

	if cfg != nil && cfg.RateLimit.PerSecond > 0 {
		ex := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
		for _, t := range cfg.RateLimit.ExcludeUpdates {
			ex[strings.ToLower(t)] = struct{}{}
		}
		mws = append(mws, Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				PerSecond: cfg.RateLimit.PerSecond,
				Burst:     cfg.RateLimit.Burst,
				Exclude:   ex,
				OnLimited: opts.OnLimited,
				Observe:   opts.RateLimited,
			}),
		})
	}

	mws = append(mws, Middleware{Name: "logger", Use: middleware.LoggerMiddleware})
	return mws
}
