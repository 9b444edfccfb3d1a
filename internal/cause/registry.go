// Package cause maps donation cause identifiers to their fixed destination
// addresses. The registry is immutable configuration: it is built once at
// startup and injected into everything that needs it, so tests can substitute
// their own mapping without touching process state.
package cause

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Entry binds one cause identifier to its destination address.
type Entry struct {
	CauseID     string
	Address     string
	DisplayName string
}

// Registry is a read-only cause lookup. Safe for unlimited concurrent reads.
type Registry struct {
	byID      map[string]Entry
	byAddress map[string]string
	order     []string
}

// DeveloperCause identifies the entry used by the developer follow-up flow.
const DeveloperCause = "developer"

// NewRegistry builds a registry from the given entries. Cause IDs are
// normalized to lower case; entries without a display name get one derived
// from the identifier. Later duplicates of an ID or address are ignored.
func NewRegistry(entries []Entry) *Registry {
	titler := cases.Title(language.English)
	r := &Registry{
		byID:      make(map[string]Entry, len(entries)),
		byAddress: make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		id := strings.ToLower(strings.TrimSpace(e.CauseID))
		if id == "" || e.Address == "" {
			continue
		}
		if _, ok := r.byID[id]; ok {
			continue
		}
		if e.DisplayName == "" {
			e.DisplayName = titler.String(id)
		}
		e.CauseID = id
		r.byID[id] = e
		r.order = append(r.order, id)
		addr := strings.ToLower(e.Address)
		if _, ok := r.byAddress[addr]; !ok {
			r.byAddress[addr] = id
		}
	}
	return r
}

// Default returns the production cause registry.
func Default() *Registry {
	return NewRegistry([]Entry{
		{CauseID: "education", Address: "0xCaE3E92B39a1965A4B988bE34470Fdc1f49279e6"},
		{CauseID: "health", Address: "0x02dE0627054cC5c59821B4Ea2cCE448f64284290"},
		{CauseID: "environment", Address: "0x40Af88bA3D3554e0cCb9Ca3EDc72EbEe4e4C7ae5"},
		{CauseID: "social", Address: "0x41Ad38D867049a180231038E38890e2c5F1EECbA", DisplayName: "Social Impact"},
		{CauseID: DeveloperCause, Address: "0xf2D3CeF68400248C9876f5A281291c7c4603D100", DisplayName: "Developer Donation"},
	})
}

// Resolve returns the destination address for a cause ID. Matching is exact
// after case folding; there is no fuzzy matching.
func (r *Registry) Resolve(causeID string) (string, bool) {
	e, ok := r.byID[strings.ToLower(strings.TrimSpace(causeID))]
	if !ok {
		return "", false
	}
	return e.Address, true
}

// ReverseLookup returns the cause ID registered for an address, comparing
// case-insensitively.
func (r *Registry) ReverseLookup(address string) (string, bool) {
	id, ok := r.byAddress[strings.ToLower(strings.TrimSpace(address))]
	return id, ok
}

// DisplayName returns the human-readable name for a cause ID, or the input
// unchanged when the cause is not registered.
func (r *Registry) DisplayName(causeID string) string {
	if e, ok := r.byID[strings.ToLower(strings.TrimSpace(causeID))]; ok {
		return e.DisplayName
	}
	return causeID
}

// Entries returns the registered entries in insertion order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}
