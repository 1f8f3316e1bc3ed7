// Package logging configures the file-backed logger. The terminal belongs to
// the TUI, so nothing is ever written to stdout or stderr.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds a production logger writing to path. An empty path disables
// logging entirely.
func New(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}

	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: opening %s: %w", path, err)
	}
	return log, nil
}
