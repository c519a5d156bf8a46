package main

import (
	"log/slog"
	"os"
)

// NewLogger creates the text logger writing to stderr
func NewLogger(level slog.Leveler) *slog.Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}
