package loader

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// LoaderBuilderOption is a functional option for configuring a SceneLoader via NewSceneLoader.
type LoaderBuilderOption func(*sceneLoader)

// WithBaseDir sets the asset root that model names resolve under (<dir>/models/external/<name>).
// Defaults to "~/.sloth".
//
// Parameters:
//   - dir: the asset root; "~" is expanded
//
// Returns:
//   - LoaderBuilderOption: a function that applies the base dir option to a loader
func WithBaseDir(dir string) LoaderBuilderOption {
	return func(l *sceneLoader) {
		if dir != "" {
			l.baseDir = dir
		}
	}
}

// WithDecodeWorkers sets the number of workers decoding textures in parallel. Defaults to 4.
//
// Parameters:
//   - n: the worker count (minimum 1)
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker option to a loader
func WithDecodeWorkers(n int) LoaderBuilderOption {
	return func(l *sceneLoader) {
		l.decodeWorkers = max(n, 1)
	}
}

// WithHTTPClient sets the client used for remote sources.
//
// Parameters:
//   - client: the HTTP client
//
// Returns:
//   - LoaderBuilderOption: a function that applies the client option to a loader
func WithHTTPClient(client *http.Client) LoaderBuilderOption {
	return func(l *sceneLoader) {
		if client != nil {
			l.httpClient = client
		}
	}
}

// WithHTTPTimeout sets the timeout of the default HTTP client. Defaults to 30s.
//
// Parameters:
//   - d: the timeout
//
// Returns:
//   - LoaderBuilderOption: a function that applies the timeout option to a loader
func WithHTTPTimeout(d time.Duration) LoaderBuilderOption {
	return func(l *sceneLoader) {
		l.httpClient = &http.Client{Timeout: d}
	}
}

// WithLogger sets the logger. Defaults to the global logger named "loader".
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(log *zap.Logger) LoaderBuilderOption {
	return func(l *sceneLoader) {
		l.log = log
	}
}
