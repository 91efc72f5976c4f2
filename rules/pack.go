package rules

import (
	_ "embed"
	"slices"
	"sync"
)

//go:embed taralians.rules
var defaultSource []byte

var defaultTable = sync.OnceValue(func() *Table {
	t, err := ParseTable("taralians.rules", defaultSource)
	if err != nil {
		panic(err)
	}
	return t
})

// Default returns the built-in Taralians table. It is compiled on first use
// and shared afterwards.
func Default() *Table {
	return defaultTable()
}

// DefaultSource returns a copy of the built-in rule source.
func DefaultSource() []byte {
	return slices.Clone(defaultSource)
}
