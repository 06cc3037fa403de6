// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// description is the on-disk form of a field list plus overwrites.
type description struct {
	Fields     []Field    `json:"fields" yaml:"fields"`
	Overwrites Overwrites `json:"overwrites,omitempty" yaml:"overwrites,omitempty"`
}

// ParseFieldsJSON parses a JSON field description. Both a bare array of
// fields and an object {"fields": [...], "overwrites": {...}} are accepted;
// overwrites are applied before the fields are returned.
func ParseFieldsJSON(data []byte) ([]Field, error) {
	var d description
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(data, &d.Fields); err != nil {
			return nil, fmt.Errorf("parsing field description: %w", err)
		}
	} else if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing field description: %w", err)
	}
	return d.resolve()
}

// ParseFieldsYAML is ParseFieldsJSON for YAML documents.
func ParseFieldsYAML(data []byte) ([]Field, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing field description: %w", err)
	}
	var d description
	if len(node.Content) == 1 && node.Content[0].Kind == yaml.SequenceNode {
		if err := node.Content[0].Decode(&d.Fields); err != nil {
			return nil, fmt.Errorf("parsing field description: %w", err)
		}
	} else if err := node.Decode(&d); err != nil {
		return nil, fmt.Errorf("parsing field description: %w", err)
	}
	return d.resolve()
}

func (d description) resolve() ([]Field, error) {
	fields, err := ApplyOverwrites(d.Fields, d.Overwrites)
	if err != nil {
		return nil, err
	}
	if err := Validate(fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// LoadFields reads a field description from a .json, .yaml or .yml file.
func LoadFields(path string) ([]Field, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseFieldsYAML(data)
	default:
		return ParseFieldsJSON(data)
	}
}

// MarshalFieldsJSON renders fields as an indented JSON array.
func MarshalFieldsJSON(fields []Field) ([]byte, error) {
	return json.MarshalIndent(fields, "", "  ")
}

// MarshalFieldsYAML renders fields as a YAML sequence.
func MarshalFieldsYAML(fields []Field) ([]byte, error) {
	return yaml.Marshal(fields)
}
