package templates

import (
	"fmt"

	"resumebuilder/internal/types"
)

// RenderFunc maps a record onto a view tree. Implementations must not mutate the record.
type RenderFunc func(record types.ResumeRecord) Node

// Variant is one registered layout
type Variant struct {
	ID     int        `json:"id"`
	Name   string     `json:"name"`
	Render RenderFunc `json:"-"`
}

// DefaultID is the layout selected when nothing else was chosen
const DefaultID = 1

// The set of layouts is closed; ids are positions in this table plus one.
var registry = [...]Variant{
	{ID: 1, Name: "Modern Minimal", Render: renderModernMinimal},
	{ID: 2, Name: "Professional Blue", Render: renderProfessionalBlue},
	{ID: 3, Name: "Elegant Two-Column", Render: renderElegantTwoColumn},
}

// Count returns the number of registered layouts
func Count() int {
	return len(registry)
}

// Valid reports whether id names a registered layout
func Valid(id int) bool {
	return id >= 1 && id <= len(registry)
}

// Lookup returns the layout registered under id.
// An unknown id is a programming error and panics.
func Lookup(id int) Variant {
	if !Valid(id) {
		panic(fmt.Sprintf("templates: unknown template id %d (have 1..%d)", id, len(registry)))
	}
	return registry[id-1]
}

// All returns the registered layouts in id order
func All() []Variant {
	out := make([]Variant, len(registry))
	copy(out, registry[:])
	return out
}

// Render renders record with the layout registered under id
func Render(id int, record types.ResumeRecord) Node {
	return Lookup(id).Render(record.Normalize())
}
