package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/docregistry/docregistry/internal/config"
	"github.com/docregistry/docregistry/internal/database"
	"github.com/docregistry/docregistry/internal/document"
	"github.com/docregistry/docregistry/internal/document/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docs.db")
	t.Setenv("DATABASE_PATH", path)
	t.Setenv("LOG_LEVEL", "error")
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func listDocuments(t *testing.T, path string) int {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, path, 5*time.Second)
	require.NoError(t, err)
	defer db.Close()
	docs, err := service.NewSQLService(db).List(ctx)
	require.NoError(t, err)
	return len(docs)
}

// Tests share cobra's flag state, so --seed is only passed where the
// following assertions do not depend on its absence.

func TestInitCommand(t *testing.T) {
	path := setupEnv(t)
	out, err := run(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized")
	assert.Equal(t, 0, listDocuments(t, path))
}

func TestInitSeedCommand(t *testing.T) {
	path := setupEnv(t)
	_, err := run(t, "init", "--seed")
	require.NoError(t, err)
	assert.Equal(t, 4, listDocuments(t, path))

	// seeding twice leaves the existing rows alone
	_, err = run(t, "init", "--seed")
	require.NoError(t, err)
	assert.Equal(t, 4, listDocuments(t, path))
}

func TestImportCommand(t *testing.T) {
	path := setupEnv(t)
	file := filepath.Join(t.TempDir(), "docs.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"documents":[
		{"id":2,"name":"Bijlage","parentId":1},
		{"id":1,"name":"Hoofd","category":"Convenant"}
	]}`), 0o600))

	out, err := run(t, "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 documents (0 failed)")
	assert.Equal(t, 1, listDocuments(t, path))
}

func TestImportCommandReportsFailures(t *testing.T) {
	setupEnv(t)
	file := filepath.Join(t.TempDir(), "docs.yaml")
	require.NoError(t, os.WriteFile(file, []byte("documents:\n  - id: 1\n    name: \"\"\n"), 0o600))

	_, err := run(t, "import", file)
	require.ErrorContains(t, err, "1 of 1 documents failed")

	_, err = run(t, "import", filepath.Join(t.TempDir(), "docs.csv"))
	require.Error(t, err)
}

func TestNewServiceFallsBackToMemory(t *testing.T) {
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "missing", "docs.db"))
	t.Setenv("LOG_LEVEL", "error")
	var err error
	cfg, err = config.LoadConfig()
	require.NoError(t, err)
	ctx := context.Background()

	svc, db := newService(ctx, false)
	require.Nil(t, db)
	d, err := svc.Create(ctx, document.CreateInput{Name: "Tijdelijk", Category: "Overige"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.ID)
	_, err = os.Stat(filepath.Dir(cfg.Database.Path))
	assert.True(t, os.IsNotExist(err))
}

func TestNewServiceUsesDatabase(t *testing.T) {
	path := setupEnv(t)
	var err error
	cfg, err = config.LoadConfig()
	require.NoError(t, err)
	ctx := context.Background()

	svc, db := newService(ctx, true)
	require.NotNil(t, db)
	defer db.Close()
	docs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 4)
	assert.Equal(t, path, cfg.Database.Path)
}
