package mirror

import "github.com/jensneuse/abstractlogger"

// Options configures a Mirror at construction time.
type Options struct {
	// BlacklistedIDs are treated as null references wherever they appear
	// as a link or connection-entry target, without ever being
	// registered.
	BlacklistedIDs map[string]struct{}

	// GuessTypename, if set, is consulted for every registration with a
	// known typename; a mismatch is logged as a diagnostic and never
	// raised as an error.
	GuessTypename func(id string) (typename string, ok bool)

	// Logger receives non-fatal diagnostics. Defaults to a no-op logger.
	Logger abstractlogger.Logger
}

// DefaultOptions returns an Options with an empty blacklist and a no-op
// logger.
func DefaultOptions() Options {
	return Options{
		BlacklistedIDs: map[string]struct{}{},
		Logger:         abstractlogger.Noop{},
	}
}

func (o Options) withDefaults() Options {
	if o.BlacklistedIDs == nil {
		o.BlacklistedIDs = map[string]struct{}{}
	}
	if o.Logger == nil {
		o.Logger = abstractlogger.Noop{}
	}
	return o
}

// UpdateOptions bounds one call to (*Mirror).Update.
type UpdateOptions struct {
	// Since is the staleness cutoff in epoch milliseconds: objects and
	// connections loaded at or after this timestamp are considered
	// fresh.
	Since int64
	// Now is the epoch-millisecond timestamp stamped on every update row
	// and network_log entry produced by this call.
	Now int64

	TypenamesLimit     int
	NodesLimit         int
	NodesOfTypeLimit   int
	ConnectionLimit    int
	ConnectionPageSize int
}

// DefaultUpdateOptions returns reasonable batch-size limits for a first
// call; callers typically only need to override Since/Now per call.
func DefaultUpdateOptions() UpdateOptions {
	return UpdateOptions{
		TypenamesLimit:     500,
		NodesLimit:         500,
		NodesOfTypeLimit:   100,
		ConnectionLimit:    50,
		ConnectionPageSize: 100,
	}
}
