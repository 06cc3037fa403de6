// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"sort"
	"strings"

	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
)

// Overwrites maps dotted field paths to replacement fields. Paths start at
// the record root, e.g. "$.user.created_at". A key without the "$." prefix
// is taken relative to the root.
type Overwrites map[string]Field

func normalizePath(p string) string {
	if p == RootPath || strings.HasPrefix(p, RootPath+".") {
		return p
	}
	return ChildPath(RootPath, p)
}

// ApplyOverwrites returns a copy of fields with every overwritten path
// replaced. A replacement without a name keeps the original name. Paths
// that match no field are an error.
func ApplyOverwrites(fields []Field, ow Overwrites) ([]Field, error) {
	if len(ow) == 0 {
		return fields, nil
	}
	pending := make(map[string]Field, len(ow))
	for p, f := range ow {
		pending[normalizePath(p)] = f
	}
	out := applyOverwrites(fields, RootPath, pending)
	if len(pending) > 0 {
		missing := make([]string, 0, len(pending))
		for p := range pending {
			missing = append(missing, p)
		}
		sort.Strings(missing)
		return nil, errs.Schemaf("overwritten fields not found: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

func applyOverwrites(fields []Field, parent string, pending map[string]Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, f := range fields {
		path := ChildPath(parent, f.Name)
		if repl, ok := pending[path]; ok {
			delete(pending, path)
			if repl.Name == "" {
				repl.Name = f.Name
			}
			out[i] = repl
			continue
		}
		f.Children = applyOverwrites(f.Children, path, pending)
		out[i] = f
	}
	return out
}
