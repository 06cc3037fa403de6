// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arrowserde

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
)

// Operation names for ConvertInfo.Operation.
const (
	OperationEncode = "encode"
	OperationDecode = "decode"
)

// Hook provides observability callpoints around every conversion.
// Implementations must be safe for concurrent use.
type Hook interface {
	OnConvertStart(ctx context.Context, info ConvertInfo) (context.Context, HookToken)
	OnConvertEnd(ctx context.Context, token HookToken, info ConvertInfo, stats *ConvertStatistics, err error)
}

// HookToken is an opaque value returned by OnConvertStart and passed back
// to OnConvertEnd. Only meaningful to the Hook that created it.
type HookToken interface{}

// ConvertInfo describes a conversion.
type ConvertInfo struct {
	Operation string   // OperationEncode or OperationDecode
	Fields    []string // top-level field names
}

// ConvertStatistics counts the batches, rows and buffer bytes produced by
// an encode or consumed by a decode.
type ConvertStatistics struct {
	Batches int64
	Rows    int64
	Columns int64
	Bytes   int64
}

// RecordBatch records one batch of numRows rows spread over columns.
func (s *ConvertStatistics) RecordBatch(numRows int64, columns []arrow.Array) {
	s.Batches++
	s.Rows += numRows
	s.Columns = int64(len(columns))
	for _, c := range columns {
		s.Bytes += dataBufferSize(c.Data())
	}
}

// dataBufferSize returns the size in bytes of every buffer of data and its
// children and dictionary.
func dataBufferSize(data arrow.ArrayData) int64 {
	var total int64
	for _, buf := range data.Buffers() {
		if buf != nil {
			total += int64(buf.Len())
		}
	}
	for _, c := range data.Children() {
		total += dataBufferSize(c)
	}
	if data.DataType().ID() == arrow.DICTIONARY {
		total += dataBufferSize(data.Dictionary())
	}
	return total
}

// observe runs fn between the hook callpoints and logs the outcome.
func (c Config) observe(ctx context.Context, info ConvertInfo, fn func(stats *ConvertStatistics) error) error {
	var token HookToken
	if c.Hook != nil {
		ctx, token = c.Hook.OnConvertStart(ctx, info)
	}
	stats := &ConvertStatistics{}
	err := fn(stats)
	if c.Hook != nil {
		c.Hook.OnConvertEnd(ctx, token, info, stats, err)
	}
	logger := c.logger()
	if err != nil {
		logger.DebugContext(ctx, "arrowserde: conversion failed",
			"operation", info.Operation, "fields", len(info.Fields), "err", err)
		return err
	}
	logger.DebugContext(ctx, "arrowserde: converted batches",
		"operation", info.Operation, "fields", len(info.Fields),
		"batches", stats.Batches, "rows", stats.Rows, "bytes", stats.Bytes)
	return nil
}
