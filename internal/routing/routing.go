// Package routing maps pull-request destination references to the webhook
// endpoints that should be notified about them.
package routing

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "cicd-notifier/internal/errors"
)

// Table maps a destination reference (e.g. "refs/heads/main") to the ordered
// list of webhook URLs subscribed to it.
type Table map[string][]string

// Resolve returns the endpoints for the destination reference. Lookup is
// exact match only; a missing entry is a configuration error, never a silent
// no-op.
func (t Table) Resolve(destinationReference string) ([]string, error) {
	endpoints, ok := t[destinationReference]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrNoRouteForReference, destinationReference)
	}
	return endpoints, nil
}

// FromNoticeTargets flattens the deploy-time noticeTargets structure (a list
// of single-entry maps) into one table. Later entries for the same reference
// append to earlier ones.
func FromNoticeTargets(targets []map[string][]string) Table {
	table := Table{}
	for _, target := range targets {
		for ref, endpoints := range target {
			table[ref] = append(table[ref], endpoints...)
		}
	}
	return table
}

// ParseJSON decodes a table from its JSON form, as stored in Parameter Store
// or an environment variable.
func ParseJSON(raw []byte) (Table, error) {
	var table Table
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("failed to parse routing table JSON: %w", err)
	}
	return table, nil
}

// Load reads a YAML routing table file. Used by the CLI mode of the
// notifier lambdas.
func Load(path string) (Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read routing table %s: %w", path, err)
	}

	var table Table
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("failed to parse routing table %s: %w", path, err)
	}
	return table, nil
}
