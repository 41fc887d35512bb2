// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// FromContext extracts the logger from ctx.
// If none is attached, a disabled logger is returned.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		ctx = context.Background()
	}
	return zerolog.Ctx(ctx)
}

// WithContext returns a new context carrying logger.
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// Component returns a child of the context logger tagged with a component field.
func Component(ctx context.Context, component string) zerolog.Logger {
	return FromContext(ctx).With().Str("component", component).Logger()
}

// WithComponent attaches a component-tagged child logger to ctx.
func WithComponent(ctx context.Context, component string) context.Context {
	return WithContext(ctx, Component(ctx, component))
}
