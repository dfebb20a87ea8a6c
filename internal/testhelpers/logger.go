package testhelpers

import (
	"io"
	"log/slog"
)

// DiscardLogger returns a logger that writes nowhere
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
