package catalog

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypesTable(t *testing.T) {
	types := Types()
	assert.Len(t, types, 18)

	names := TypeNames()
	assert.True(t, slices.IsSorted(names))
	assert.Contains(t, names, "fairy")
	for _, ti := range types {
		assert.Regexp(t, `^#[0-9a-f]{6}$`, ti.Color, ti.Name)
	}

	types[0].Name = "changed"
	assert.Equal(t, "bug", Types()[0].Name, "callers get a copy")
}
