// Package value implements CommonValue (C7), the normalized shape every
// query backend's response is mapped into so a capture's recorded answer
// can be diffed against a replay's answer regardless of which backend
// produced either one.
//
// Grounded directly on original_source/src/value.rs.
package value

import (
	"fmt"
	"sort"
	"strings"
)

// CommonValue is the normalized response shape. Every field is optional to
// accommodate backends that don't report it; equality is field-wise with
// set equality (no ordering, no duplicates) on PlayerNames.
type CommonValue struct {
	Name            *string         `json:"name,omitempty"`
	Map             *string         `json:"map,omitempty"`
	HasPassword     *bool           `json:"has_password,omitempty"`
	PlayersOnline   *uint64         `json:"players_online,omitempty"`
	PlayersMaximum  *uint64         `json:"players_maximum,omitempty"`
	PlayerNames     map[string]struct{} `json:"player_names"`
}

// NewPlayerNames builds a PlayerNames set from a slice, silently
// deduplicating -- HashSet<String> has no stdlib Go equivalent.
func NewPlayerNames(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Equal reports field-wise equality, with set equality on PlayerNames.
func (v CommonValue) Equal(other CommonValue) bool {
	if !equalPtr(v.Name, other.Name) {
		return false
	}
	if !equalPtr(v.Map, other.Map) {
		return false
	}
	if !equalBoolPtr(v.HasPassword, other.HasPassword) {
		return false
	}
	if !equalUint64Ptr(v.PlayersOnline, other.PlayersOnline) {
		return false
	}
	if !equalUint64Ptr(v.PlayersMaximum, other.PlayersMaximum) {
		return false
	}
	return equalNameSet(v.PlayerNames, other.PlayerNames)
}

// Diff renders a human-readable report of the differing fields, printing
// only fields that actually differ, and for PlayerNames every name present
// in only one of the two sets -- grounded on value.rs's print_diff! macro
// and print_difference method.
func (v CommonValue) Diff(other CommonValue) string {
	var sb strings.Builder

	fmt.Fprintln(&sb, "CommonValue diff {")
	diffField(&sb, "name", v.Name, other.Name)
	diffField(&sb, "map", v.Map, other.Map)
	diffField(&sb, "has_password", v.HasPassword, other.HasPassword)
	diffField(&sb, "players_online", v.PlayersOnline, other.PlayersOnline)
	diffField(&sb, "players_maximum", v.PlayersMaximum, other.PlayersMaximum)

	onlyOne := append(setDifference(v.PlayerNames, other.PlayerNames), setDifference(other.PlayerNames, v.PlayerNames)...)
	sort.Strings(onlyOne)
	for _, name := range onlyOne {
		fmt.Fprintf(&sb, "  %q\n", name)
	}

	fmt.Fprintln(&sb, "}")

	return sb.String()
}

func diffField[T comparable](sb *strings.Builder, name string, a, b *T) {
	if equalGenericPtr(a, b) {
		return
	}
	fmt.Fprintf(sb, "  %q => expected(%s) value(%s)\n", name, formatPtr(a), formatPtr(b))
}

func formatPtr[T any](p *T) string {
	if p == nil {
		return "None"
	}
	return fmt.Sprintf("Some(%v)", *p)
}

func equalGenericPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalPtr(a, b *string) bool     { return equalGenericPtr(a, b) }
func equalBoolPtr(a, b *bool) bool   { return equalGenericPtr(a, b) }
func equalUint64Ptr(a, b *uint64) bool { return equalGenericPtr(a, b) }

func equalNameSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for name := range a {
		if _, ok := b[name]; !ok {
			return false
		}
	}
	return true
}

// setDifference returns a's elements not present in b, sorted for
// deterministic diff output.
func setDifference(a, b map[string]struct{}) []string {
	var out []string
	for name := range a {
		if _, ok := b[name]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
