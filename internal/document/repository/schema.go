package repository

import (
	"context"
	_ "embed"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/docregistry/docregistry/internal/database"
	"github.com/docregistry/docregistry/internal/document"
	"gopkg.in/yaml.v3"
)

const createDocumentsTable = `
CREATE TABLE IF NOT EXISTS documents (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	name             TEXT    NOT NULL CONSTRAINT documents_name_not_blank CHECK (trim(name) <> ''),
	category         TEXT,
	publication_date TEXT,
	status           TEXT    NOT NULL DEFAULT 'Concept',
	content          TEXT    NOT NULL DEFAULT '',
	parent_id        INTEGER REFERENCES documents(id) ON DELETE RESTRICT
)`

const createParentIndex = `CREATE INDEX IF NOT EXISTS idx_documents_parent_id ON documents(parent_id)`

// EnsureSchema creates the documents table and its index when they are
// missing. It reports whether the table was created; on an initialized store
// it changes nothing.
func EnsureSchema(ctx context.Context, db *database.DB) (bool, error) {
	_, exists, err := database.Get(ctx, db,
		sq.Select("name").From("sqlite_master").Where(sq.Eq{"type": "table", "name": "documents"}),
		scanString)
	if err != nil {
		return false, fmt.Errorf("check documents table: %w", err)
	}
	if !exists {
		if _, err := db.Run(ctx, sq.Expr(createDocumentsTable)); err != nil {
			return false, fmt.Errorf("create documents table: %w", err)
		}
	}
	if _, err := db.Run(ctx, sq.Expr(createParentIndex)); err != nil {
		return false, fmt.Errorf("create parent index: %w", err)
	}
	return !exists, nil
}

//go:embed seed.yaml
var seedYAML []byte

type seedDocument struct {
	Name            string         `yaml:"name"`
	Category        string         `yaml:"category"`
	PublicationDate *string        `yaml:"publicationDate"`
	Status          string         `yaml:"status"`
	Content         string         `yaml:"content"`
	Addendums       []seedDocument `yaml:"addendums"`
}

type seedFile struct {
	Documents []seedDocument `yaml:"documents"`
}

// Seed inserts the sample documents when the table is empty and returns the
// number of rows written. Existing data is never touched.
func Seed(ctx context.Context, db *database.DB) (int, error) {
	n, _, err := database.Get(ctx, db, sq.Select("COUNT(*)").From("documents"), scanInt)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	var f seedFile
	if err := yaml.Unmarshal(seedYAML, &f); err != nil {
		return 0, fmt.Errorf("parse seed data: %w", err)
	}

	inserted := 0
	for _, d := range f.Documents {
		res, err := db.Run(ctx, seedInsert(d, nil))
		if err != nil {
			return inserted, fmt.Errorf("seed %q: %w", d.Name, err)
		}
		inserted++
		parentID := res.LastInsertID
		for _, a := range d.Addendums {
			if _, err := db.Run(ctx, seedInsert(a, &parentID)); err != nil {
				return inserted, fmt.Errorf("seed addendum %q: %w", a.Name, err)
			}
			inserted++
		}
	}
	return inserted, nil
}

func seedInsert(d seedDocument, parentID *int64) sq.InsertBuilder {
	status := d.Status
	if status == "" {
		status = document.StatusDraft
	}
	return sq.Insert("documents").
		Columns("name", "category", "publication_date", "status", "content", "parent_id").
		Values(d.Name, d.Category, d.PublicationDate, status, d.Content, parentID)
}
