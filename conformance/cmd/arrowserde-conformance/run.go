// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"

	"github.com/Query-farm/arrowserde/conformance"
)

// listCommand prints the catalogue.
type listCommand struct{}

func (cmd *listCommand) run(_ *kingpin.ParseContext) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CASE\tCOLUMNS\tDESCRIPTION")
	for _, c := range conformance.Catalogue() {
		fmt.Fprintf(w, "%s\t%d\t%s\n", c.Name, len(c.Fields), c.Description)
	}
	return w.Flush()
}

func addListCommand(app *kingpin.Application) {
	cmd := &listCommand{}
	app.Command("list", "List the conformance cases.").Action(cmd.run)
}

// runCommand runs the catalogue, or the named cases, and reports every
// result.
type runCommand struct {
	flags commonFlags
	cases *[]string
}

func (cmd *runCommand) run(_ *kingpin.ParseContext) error {
	cfg, err := cmd.flags.config()
	if err != nil {
		return err
	}
	selected, err := selectCases(conformance.Catalogue(), *cmd.cases)
	if err != nil {
		return err
	}
	results := conformance.RunAll(context.Background(), cfg, selected)
	failed := report(os.Stdout, results)
	if failed > 0 {
		return fmt.Errorf("%d of %d cases failed", failed, len(results))
	}
	return nil
}

func selectCases(all []conformance.Case, names []string) ([]conformance.Case, error) {
	if len(names) == 0 {
		return all, nil
	}
	var out []conformance.Case
	for _, name := range names {
		i := slices.IndexFunc(all, func(c conformance.Case) bool { return c.Name == name })
		if i < 0 {
			return nil, fmt.Errorf("unknown case %q", name)
		}
		out = append(out, all[i])
	}
	return out, nil
}

// report prints one line per result and returns the number of failures.
func report(out io.Writer, results []conformance.Result) int {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CASE\tSTATUS\tROWS\tBATCHES\tSTREAM")
	var failed int
	var total uint64
	for _, r := range results {
		status := "PASS"
		if !r.Passed() {
			status = "FAIL"
			failed++
		}
		total += uint64(r.StreamBytes)
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", r.Case, status, humanize.Comma(r.Rows), r.Batches, humanize.Bytes(uint64(r.StreamBytes)))
	}
	_ = w.Flush()
	for _, r := range results {
		if !r.Passed() {
			fmt.Fprintf(out, "\n%s: %v\n", r.Case, r.Err)
		}
	}
	fmt.Fprintf(out, "\n%d passed, %d failed, %s of streams\n", len(results)-failed, failed, humanize.Bytes(total))
	return failed
}

func addRunCommand(app *kingpin.Application) {
	cmd := &runCommand{}
	run := app.Command("run", "Run the conformance cases.").Default().Action(cmd.run)
	cmd.flags.register(run)
	cmd.cases = run.Arg("case", "Cases to run. Runs every case when empty.").Strings()
}
