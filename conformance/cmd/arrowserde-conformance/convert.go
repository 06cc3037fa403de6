// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"

	"github.com/Query-farm/arrowserde/arrowserde"
	"github.com/Query-farm/arrowserde/arrowserde/schema"
	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

// toIPCCommand reads JSON lines and writes them as an Arrow IPC stream.
type toIPCCommand struct {
	flags  commonFlags
	fields string
	input  string
	output string
}

func (cmd *toIPCCommand) run(_ *kingpin.ParseContext) error {
	cfg, err := cmd.flags.config()
	if err != nil {
		return err
	}
	fields, err := schema.LoadFields(cmd.fields)
	if err != nil {
		return fmt.Errorf("loading fields: %w", err)
	}
	s, err := schema.ToArrowSchema(fields)
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(cmd.input)
	if err != nil {
		return err
	}
	defer closeIn()
	records, err := readJSONLines(in)
	if err != nil {
		return err
	}

	batches, err := arrowserde.ToRecordBatches(context.Background(), cfg, fields, serde.Dynamic(records))
	if err != nil {
		return err
	}
	defer func() {
		for _, b := range batches {
			b.Release()
		}
	}()

	out, closeOut, err := createOutput(cmd.output)
	if err != nil {
		return err
	}
	counter := &countingWriter{w: out}
	if err := arrowserde.WriteStream(counter, s, batches, cfg.Compression); err != nil {
		closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s records in %d batches, %s (%s)\n",
		humanize.Comma(int64(len(records))), len(batches), humanize.Bytes(uint64(counter.n)), cfg.Compression)
	return nil
}

// toJSONCommand reads an Arrow IPC stream and writes its records as JSON
// lines.
type toJSONCommand struct {
	fields  string
	input   string
	output  string
	verbose bool
}

func (cmd *toJSONCommand) run(_ *kingpin.ParseContext) error {
	var fields []schema.Field
	if cmd.fields != "" {
		var err error
		if fields, err = schema.LoadFields(cmd.fields); err != nil {
			return fmt.Errorf("loading fields: %w", err)
		}
	}
	flags := commonFlags{verbose: cmd.verbose}
	cfg, err := flags.config()
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(cmd.input)
	if err != nil {
		return err
	}
	defer closeIn()
	_, batches, err := arrowserde.ReadStream(in)
	if err != nil {
		return err
	}
	defer func() {
		for _, b := range batches {
			b.Release()
		}
	}()
	records, err := arrowserde.DecodeRecordBatches(context.Background(), cfg, fields, batches)
	if err != nil {
		return err
	}

	out, closeOut, err := createOutput(cmd.output)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(out)
	enc := json.NewEncoder(bw)
	for _, r := range records {
		if err := enc.Encode(jsonValue(r)); err != nil {
			closeOut()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

func addConvertCommand(app *kingpin.Application) {
	convert := app.Command("convert", "Convert between JSON lines and Arrow IPC streams.")

	toIPC := &toIPCCommand{}
	c := convert.Command("to-ipc", "Encode JSON lines into an Arrow IPC stream.").Action(toIPC.run)
	toIPC.flags.register(c)
	c.Flag("fields", "JSON or YAML field description.").Short('f').Required().ExistingFileVar(&toIPC.fields)
	c.Flag("output", "Output file, - for stdout.").Short('o').Default("-").StringVar(&toIPC.output)
	c.Arg("input", "JSON lines file, - for stdin.").Default("-").StringVar(&toIPC.input)

	toJSON := &toJSONCommand{}
	j := convert.Command("to-json", "Decode an Arrow IPC stream into JSON lines.").Action(toJSON.run)
	j.Flag("fields", "JSON or YAML field description. Read from the stream schema when omitted.").Short('f').ExistingFileVar(&toJSON.fields)
	j.Flag("output", "Output file, - for stdout.").Short('o').Default("-").StringVar(&toJSON.output)
	j.Flag("verbose", "Log the conversion to stderr.").Short('v').BoolVar(&toJSON.verbose)
	j.Arg("input", "Arrow IPC stream, - for stdin.").Default("-").StringVar(&toJSON.input)
}

func openInput(name string) (io.Reader, func(), error) {
	if name == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func createOutput(name string) (io.Writer, func() error, error) {
	if name == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, f.Close, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// readJSONLines decodes a stream of JSON values, one record each.
func readJSONLines(r io.Reader) ([]any, error) {
	dec := json.NewDecoder(bufio.NewReader(r))
	dec.UseNumber()
	var out []any
	for line := 1; ; line++ {
		var v any
		if err := dec.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, fmt.Errorf("record %d: %w", line, err)
		}
		out = append(out, recordValue(v))
	}
}

// recordValue turns decoded JSON into dynamic values: objects become
// records with sorted field names, integral numbers int64 and other
// numbers float64.
func recordValue(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rec := make(serde.Record, 0, len(keys))
		for _, k := range keys {
			rec = append(rec, serde.Field{Name: k, Value: recordValue(x[k])})
		}
		return rec
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = recordValue(e)
		}
		return out
	default:
		return v
	}
}

// jsonValue turns decoded dynamic values into values encoding/json style
// marshalers understand. Maps with non-string keys become lists of
// [key, value] pairs; variants become single-key objects.
func jsonValue(v any) any {
	switch x := v.(type) {
	case serde.Record:
		out := make(map[string]any, len(x))
		for _, f := range x {
			out[f.Name] = jsonValue(f.Value)
		}
		return out
	case serde.Map:
		obj := make(map[string]any, len(x))
		pairs := make([]any, 0, len(x))
		for _, e := range x {
			pairs = append(pairs, []any{jsonValue(e.Key), jsonValue(e.Value)})
			if k, ok := e.Key.(string); ok && obj != nil {
				obj[k] = jsonValue(e.Value)
			} else {
				obj = nil
			}
		}
		if obj != nil {
			return obj
		}
		return pairs
	case serde.Variant:
		return map[string]any{x.Name: jsonValue(x.Value)}
	case serde.Tuple:
		return jsonValue([]any(x))
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = jsonValue(e)
		}
		return out
	default:
		return v
	}
}
