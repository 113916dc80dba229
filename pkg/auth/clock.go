package auth

import "time"

// NowFunc supplies the current time. Services take it as an option so tests
// can walk the clock across expiry boundaries.
type NowFunc func() time.Time

func defaultNow() time.Time { return time.Now() }

// Option configures a service.
type Option func(*NowFunc)

// WithClock overrides the service time source.
func WithClock(now NowFunc) Option {
	return func(dst *NowFunc) { *dst = now }
}
