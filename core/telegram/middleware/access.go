package middleware

import tele "gopkg.in/telebot.v4"

// CapabilityCheck reports whether the sender of c holds capability.
type CapabilityCheck func(c tele.Context, capability string) bool

// CapabilityOptions defines how capability checks behave.
type CapabilityOptions struct {
	Check    CapabilityCheck
	OnReject tele.HandlerFunc
}

// RequireCapability lets the update through only when opts.Check grants
// capability. An empty capability or a nil check passes everything.
func RequireCapability(opts CapabilityOptions, capability string) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		if capability == "" || opts.Check == nil {
			return next
		}
		return func(c tele.Context) error {
			if c.Sender() == nil || !opts.Check(c, capability) {
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
