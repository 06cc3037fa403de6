// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package tags

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type tagged struct {
	ID      int64  `arrow:"id,int32"`
	Name    string `arrow:",large"`
	Skipped string `arrow:"-"`
	Plain   float64
	Price   string `arrow:"price,decimal=10:2"`
	hidden  int
}

func TestFields(t *testing.T) {
	fields := Fields(reflect.TypeOf(tagged{}))
	require.Len(t, fields, 4)

	require.Equal(t, "id", fields[0].Tag.Name)
	require.True(t, fields[0].Tag.Has("int32"))

	require.Equal(t, "Name", fields[1].Tag.Name)
	require.True(t, fields[1].Tag.Has("large"))

	require.Equal(t, "Plain", fields[2].Tag.Name)
	require.Empty(t, fields[2].Tag.Options)

	v, ok := fields[3].Tag.Value("decimal")
	require.True(t, ok)
	require.Equal(t, "10:2", v)
	_ = tagged{}.hidden
}
