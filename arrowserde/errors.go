// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arrowserde

import "github.com/Query-farm/arrowserde/arrowserde/internal/errs"

// Error is the error returned by every conversion. Its annotations carry
// the dotted path ("field") and data type ("data_type") of the column
// where the failure happened.
type Error = errs.Error

// ErrorKind classifies an Error.
type ErrorKind = errs.Kind

const (
	KindSchema     = errs.KindSchema
	KindProtocol   = errs.KindProtocol
	KindExhausted  = errs.KindExhausted
	KindConversion = errs.KindConversion
	KindCustom     = errs.KindCustom
)

// Sentinels for use with errors.Is.
var (
	ErrSchema     = errs.ErrSchema
	ErrProtocol   = errs.ErrProtocol
	ErrExhausted  = errs.ErrExhausted
	ErrConversion = errs.ErrConversion
)
