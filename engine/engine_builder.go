package engine

import (
	"context"

	"github.com/Carmen-Shannon/sloth/internal/config"
	"go.uber.org/zap"
)

// ViewerBuilderOption is a functional option for configuring a Viewer.
// Use the With* functions to create options that are applied directly to the viewer instance.
type ViewerBuilderOption func(*viewer)

// WithConfig sets the configuration the viewer is built from. Defaults to config.Default().
//
// Parameters:
//   - cfg: the configuration
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithConfig(cfg *config.Config) ViewerBuilderOption {
	return func(v *viewer) {
		if cfg != nil {
			v.cfg = cfg
		}
	}
}

// WithContext sets the context that bounds model loading. Cancelling it aborts remote fetches.
//
// Parameters:
//   - ctx: the context
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithContext(ctx context.Context) ViewerBuilderOption {
	return func(v *viewer) {
		if ctx != nil {
			v.ctx = ctx
		}
	}
}

// WithLogger sets the logger. Defaults to the global logger named "viewer".
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithLogger(log *zap.Logger) ViewerBuilderOption {
	return func(v *viewer) {
		v.log = log
	}
}
