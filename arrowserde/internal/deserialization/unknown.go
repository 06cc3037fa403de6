// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package deserialization

import (
	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

// unknownDeserializer stands in for columns that only collect values of
// unknown variants. They hold no data, so every row is null.
type unknownDeserializer struct {
	n int
}

func (d *unknownDeserializer) length() int { return d.n }
func (*unknownDeserializer) valid(int) bool { return true }

func (*unknownDeserializer) visit(int, hint, serde.Visitor) error {
	return errs.Protocolf("cannot deserialize unknown variant")
}
