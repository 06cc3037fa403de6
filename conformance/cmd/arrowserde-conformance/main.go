// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Command arrowserde-conformance runs the round-trip catalogue and
// converts JSON lines to Arrow IPC streams and back.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/Query-farm/arrowserde/arrowserde"
)

// commonFlags are shared by every command that converts records.
type commonFlags struct {
	compression string
	chunkRows   int
	verbose     bool
}

func (f *commonFlags) register(cmd *kingpin.CmdClause) {
	cmd.Flag("compression", "Stream framing: none, zstd or lz4.").Default("none").EnumVar(&f.compression, "none", "zstd", "lz4")
	cmd.Flag("chunk-rows", "Maximum rows per record batch (0 for a single batch).").Default("0").IntVar(&f.chunkRows)
	cmd.Flag("verbose", "Log every conversion to stderr.").Short('v').BoolVar(&f.verbose)
}

func (f *commonFlags) config() (arrowserde.Config, error) {
	cfg := arrowserde.DefaultConfig()
	compression, err := arrowserde.ParseCompression(f.compression)
	if err != nil {
		return cfg, err
	}
	cfg.Compression = compression
	cfg.ChunkRows = f.chunkRows
	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return cfg, nil
}

func main() {
	app := kingpin.New("arrowserde-conformance", "Round-trip conformance checks for the arrowserde codec.")
	app.HelpFlag.Short('h')
	addListCommand(app)
	addRunCommand(app)
	addConvertCommand(app)

	if _, err := app.Parse(os.Args[1:]); err != nil {
		exitWithErr(err)
	}
}

func exitWithErr(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
