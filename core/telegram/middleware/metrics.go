package middleware

import (
	"time"

	tele "gopkg.in/telebot.v4"
)

// UpdateObserver receives one observation per processed update.
type UpdateObserver interface {
	ObserveUpdate(kind string, took time.Duration, err error)
}

// MetricsMiddleware times every update and reports it to obs.
func MetricsMiddleware(obs UpdateObserver) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		if obs == nil {
			return next
		}
		return func(c tele.Context) error {
			start := time.Now()
			err := next(c)
			obs.ObserveUpdate(UpdateKind(c.Update()), time.Since(start), err)
			return err
		}
	}
}
