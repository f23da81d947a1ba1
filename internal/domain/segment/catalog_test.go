package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogLookup(t *testing.T) {
	cat := DefaultCatalog()

	f, ok := cat.Field("lifetime_value")
	require.True(t, ok)
	assert.Equal(t, TypeNumber, f.Type)
	assert.Equal(t, "Commerce", f.Group)

	_, ok = cat.Field("nonexistent")
	assert.False(t, ok)

	assert.Equal(t, TypeSelect, cat.FieldType("country"))
	assert.Equal(t, TypeString, cat.FieldType("nonexistent"), "unknown fields fall back to string")

	first, ok := cat.FirstField()
	require.True(t, ok)
	assert.Equal(t, "email", first.Key)
}

func TestCatalogIsolation(t *testing.T) {
	cat := NewCatalog([]FieldDefinition{
		{Key: "a", Type: TypeString},
		{Key: "b", Type: TypeNumber},
	})

	fields := cat.Fields()
	fields[0].Key = "mutated"

	fresh, ok := cat.Field("a")
	require.True(t, ok)
	assert.Equal(t, "a", fresh.Key, "Fields must return a copy")
}

func TestEmptyCatalog(t *testing.T) {
	cat := NewCatalog(nil)

	_, ok := cat.FirstField()
	assert.False(t, ok)

	// A default condition is still structurally valid.
	c := NewCondition(cat)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, DefaultOperator(TypeString), c.Operator)
}

func TestCatalogDuplicateKeys(t *testing.T) {
	cat := NewCatalog([]FieldDefinition{
		{Key: "dup", Type: TypeString, Label: "first"},
		{Key: "dup", Type: TypeNumber, Label: "second"},
	})

	f, ok := cat.Field("dup")
	require.True(t, ok)
	assert.Equal(t, "first", f.Label, "first registration wins for lookup")
	assert.Len(t, cat.Fields(), 2, "order is preserved")
}
