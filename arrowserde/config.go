// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arrowserde

import (
	"fmt"
	"log/slog"
	"strings"
)

// Compression selects the framing of IPC streams written by WriteStream.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Compression(%d)", int(c))
	}
}

// ParseCompression parses "none", "zstd" or "lz4".
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	}
	return CompressionNone, fmt.Errorf("unknown compression %q", s)
}

// Config controls the batch-level entry points.
type Config struct {
	// Logger receives debug records for every conversion. Defaults to
	// slog.Default().
	Logger *slog.Logger
	// Hook observes every conversion. Optional.
	Hook Hook
	// ChunkRows splits encoded records into batches of at most this many
	// rows. 0 keeps every record in one batch.
	ChunkRows int
	// Compression is the framing used by WriteStream.
	Compression Compression
}

// DefaultConfig returns a Config with the default logger, no hook, no
// chunking and no compression.
func DefaultConfig() Config {
	return Config{Logger: slog.Default()}
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
