// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Query-farm/arrowserde/arrowserde/serde"
	"github.com/Query-farm/arrowserde/conformance"
)

func TestReadJSONLines(t *testing.T) {
	in := `{"id": 1, "name": "a", "tags": ["x"], "score": 0.5}
{"id": 2, "name": null, "nested": {"b": 2, "a": 1}}
`
	got, err := readJSONLines(strings.NewReader(in))
	require.NoError(t, err)
	want := []any{
		serde.Record{
			{Name: "id", Value: int64(1)},
			{Name: "name", Value: "a"},
			{Name: "score", Value: 0.5},
			{Name: "tags", Value: []any{"x"}},
		},
		serde.Record{
			{Name: "id", Value: int64(2)},
			{Name: "name", Value: nil},
			{Name: "nested", Value: serde.Record{{Name: "a", Value: int64(1)}, {Name: "b", Value: int64(2)}}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestReadJSONLinesReportsRecord(t *testing.T) {
	_, err := readJSONLines(strings.NewReader("{\"a\": 1}\n{oops}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 2")
}

func TestJSONValue(t *testing.T) {
	got := jsonValue(serde.Record{
		{Name: "m", Value: serde.Map{{Key: "k", Value: int64(1)}}},
		{Name: "ids", Value: serde.Map{{Key: int32(7), Value: "seven"}}},
		{Name: "v", Value: serde.Variant{Name: "Label", Index: 2, Value: "x"}},
	})
	want := map[string]any{
		"m":   map[string]any{"k": int64(1)},
		"ids": []any{[]any{int32(7), "seven"}},
		"v":   map[string]any{"Label": "x"},
	}
	assert.Equal(t, want, got)
}

func TestConvertRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fieldsPath := filepath.Join(dir, "fields.yaml")
	require.NoError(t, os.WriteFile(fieldsPath, []byte(`
- name: id
  data_type: Int64
- name: name
  data_type: Utf8
  nullable: true
`), 0o600))
	inPath := filepath.Join(dir, "in.jsonl")
	require.NoError(t, os.WriteFile(inPath, []byte("{\"id\": 1, \"name\": \"a\"}\n{\"id\": 2}\n"), 0o600))
	streamPath := filepath.Join(dir, "out.arrows")
	outPath := filepath.Join(dir, "out.jsonl")

	toIPC := &toIPCCommand{flags: commonFlags{compression: "zstd"}, fields: fieldsPath, input: inPath, output: streamPath}
	require.NoError(t, toIPC.run(nil))
	toJSON := &toJSONCommand{input: streamPath, output: outPath}
	require.NoError(t, toJSON.run(nil))

	out, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"id": 1, "name": "a"}`, lines[0])
	assert.JSONEq(t, `{"id": 2, "name": null}`, lines[1])
}

func TestSelectCases(t *testing.T) {
	all := conformance.Catalogue()
	got, err := selectCases(all, []string{"maps", "primitives"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "maps", got[0].Name)

	_, err = selectCases(all, []string{"nope"})
	require.Error(t, err)
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	failed := report(&buf, []conformance.Result{
		{Case: "ok", Rows: 1200, Batches: 1, StreamBytes: 2048},
		{Case: "bad", Err: assert.AnError},
	})
	assert.Equal(t, 1, failed)
	assert.Contains(t, buf.String(), "1,200")
	assert.Contains(t, buf.String(), "2.0 kB")
	assert.Contains(t, buf.String(), "bad: "+assert.AnError.Error())
}
