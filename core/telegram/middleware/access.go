package middleware

import tele "gopkg.in/telebot.v4"

// AdminOptions names the single admin and what non-admins get instead.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// IsAdmin reports whether c comes from the admin. With AdminID unset nobody
// is admin.
func (o AdminOptions) IsAdmin(c tele.Context) bool {
	if o.AdminID == 0 {
		return false
	}
	u := c.Sender()
	return u != nil && u.ID == o.AdminID
}

// AdminOnlyMiddleware lets only the admin through. Others reach OnReject, or
// nothing when it is nil.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			switch {
			case opts.IsAdmin(c):
				return next(c)
			case opts.OnReject != nil:
				return opts.OnReject(c)
			}
			return nil
		}
	}
}
