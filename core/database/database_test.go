package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

func TestConfigConnectionStrings(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "iskra", Password: "p@ss word", Name: "iskra"}
	assert.Equal(t, "user=iskra password='p@ss word' host=db port=5432 dbname=iskra sslmode=disable", cfg.DSN())
	assert.Equal(t, "postgres://iskra:p%40ss%20word@db:5432/iskra?sslmode=disable", cfg.URL())

	cfg.Password = `it's`
	assert.Contains(t, cfg.DSN(), `password='it\'s'`)

	cfg.SSLMode = "require"
	assert.Contains(t, cfg.URL(), "sslmode=require")
}

func TestMigrationFileSelection(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_interactions.up.sql":   {Data: []byte("--")},
		"0001_init.up.sql":           {Data: []byte("--")},
		"0001_init.down.sql":         {Data: []byte("--")},
		"0003_matches.up.sql":        {Data: []byte("--")},
		"README.md":                  {Data: []byte("x")},
		"nested/0009_skip.up.sql":    {Data: []byte("--")},
	}
	files := listMigrationFiles(fsys)
	assert.Equal(t, []string{"0001_init.up.sql", "0002_interactions.up.sql", "0003_matches.up.sql"}, files)
	assert.Equal(t, []string{"0002_interactions.up.sql", "0003_matches.up.sql"}, selectApplied(files, 1, 3))
	assert.Nil(t, selectApplied(files, 3, 3))
	assert.Equal(t, uint64(2), parseVersion("0002_interactions.up.sql"))
}
