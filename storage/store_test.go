package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaStatements(t *testing.T) {
	schema := `
-- sessions table
CREATE TABLE IF NOT EXISTS t1 (
    id UUID PRIMARY KEY
);

-- index
CREATE INDEX IF NOT EXISTS idx_t1 ON t1 (id);
`
	statements := schemaStatements(schema)
	require.Len(t, statements, 2)
	assert.Contains(t, statements[0], "CREATE TABLE IF NOT EXISTS t1")
	assert.NotContains(t, statements[0], "--")
	assert.Contains(t, statements[1], "CREATE INDEX IF NOT EXISTS idx_t1")
}

func TestSchemaStatements_EmbeddedSchema(t *testing.T) {
	statements := schemaStatements(schemaSQL)
	require.NotEmpty(t, statements)

	for _, stmt := range statements {
		assert.NotEmpty(t, stmt)
		assert.NotContains(t, stmt, ";")
	}
}
