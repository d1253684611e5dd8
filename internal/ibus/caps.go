package ibus

import "strings"

// Capability is the bitmask of input-context capabilities a client can
// advertise to the daemon with SetCapabilities.
type Capability uint32

const (
	CapPreeditText Capability = 1 << iota
	CapAuxiliaryText
	CapLookupTable
	CapFocus
	CapProperty
	CapSurroundingText
)

// DefaultCapabilities is what the session advertises after creating an
// input context: the daemon draws its own candidate UI, we only render
// preedit text and report focus.
const DefaultCapabilities = CapFocus | CapPreeditText

var capNames = []struct {
	cap  Capability
	name string
}{
	{CapPreeditText, "preedit-text"},
	{CapAuxiliaryText, "auxiliary-text"},
	{CapLookupTable, "lookup-table"},
	{CapFocus, "focus"},
	{CapProperty, "property"},
	{CapSurroundingText, "surrounding-text"},
}

// Has reports whether every bit in c2 is set in c.
func (c Capability) Has(c2 Capability) bool {
	return c&c2 == c2
}

func (c Capability) String() string {
	if c == 0 {
		return "none"
	}
	var parts []string
	for _, n := range capNames {
		if c&n.cap != 0 {
			parts = append(parts, n.name)
			c &^= n.cap
		}
	}
	if c != 0 {
		parts = append(parts, "unknown")
	}
	return strings.Join(parts, "|")
}
