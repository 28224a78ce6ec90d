package binder

import "log/slog"

type Options struct {
	Logger          *slog.Logger // receives build diagnostics; discarded when nil
	StrictMapping   bool         // when true, Build fails if any abstraction property is left unmapped
	ResolutionCache bool         // when true, Map caches the registration matched for each dynamic type
}

type Option func(*Options)

func WithLogger(l *slog.Logger) Option { return func(o *Options) { o.Logger = l } }
func WithStrictMapping(v bool) Option  { return func(o *Options) { o.StrictMapping = v } }
func WithResolutionCache(v bool) Option {
	return func(o *Options) { o.ResolutionCache = v }
}

func defaultOptions() Options {
	return Options{ResolutionCache: true}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}
