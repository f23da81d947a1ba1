package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pulsecrm/internal/core/entity"
	"pulsecrm/internal/core/id"
)

type mockEntity struct {
	entity.BaseEntity
	Email string `db:"email" json:"email"`
	Name  string `db:"name" json:"name"`
}

func TestExtractDBColumns_EmbeddedBase(t *testing.T) {
	cols := ExtractDBColumns[mockEntity]()

	expectedCols := []string{
		"id", "version", "created_at", "updated_at", "created_by", "updated_by",
		"email", "name",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
}

func TestStructToMap_EmbeddedBase(t *testing.T) {
	now := time.Now().UTC()
	e := mockEntity{
		BaseEntity: entity.BaseEntity{
			ID:        id.New(),
			Version:   5,
			CreatedAt: now,
			UpdatedAt: now,
			CreatedBy: "user-1",
		},
		Email: "ada@example.com",
		Name:  "Ada",
	}

	m := StructToMap(e)

	assert.Equal(t, e.ID, m["id"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, now, m["created_at"])
	assert.Equal(t, "user-1", m["created_by"])
	assert.Equal(t, "ada@example.com", m["email"])
	assert.Equal(t, "Ada", m["name"])
}

func TestStructToMap_PointerInput(t *testing.T) {
	e := &mockEntity{Email: "ptr@example.com"}

	m := StructToMap(e)

	assert.Equal(t, "ptr@example.com", m["email"])
}
