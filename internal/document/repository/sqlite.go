package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/docregistry/docregistry/internal/database"
	"github.com/docregistry/docregistry/internal/document"
	"github.com/mattn/go-sqlite3"
)

var documentColumns = []string{"id", "name", "category", "publication_date", "status", "content", "parent_id"}

// SQLRepo implements the document statements on top of the shared store handle.
type SQLRepo struct {
	db *database.DB
}

func NewSQLRepo(db *database.DB) *SQLRepo {
	return &SQLRepo{db: db}
}

// ListJoined returns every top-level document outer-joined with its
// addendums, parents by name and addendums by publication date.
func (r *SQLRepo) ListJoined(ctx context.Context) ([]document.JoinedRow, error) {
	q := sq.Select(
		"d1.id", "d1.name", "d1.category", "d1.publication_date", "d1.status", "d1.content",
		"d2.id", "d2.name", "d2.status", "d2.publication_date",
	).
		From("documents d1").
		LeftJoin("documents d2 ON d2.parent_id = d1.id").
		Where(sq.Eq{"d1.parent_id": nil}).
		OrderBy("d1.name", "d1.id", "d2.publication_date", "d2.id")

	rows, err := database.Query(ctx, r.db, q, scanJoinedRow)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return rows, nil
}

// ListUncategorized returns top-level documents whose category is null or empty.
func (r *SQLRepo) ListUncategorized(ctx context.Context) ([]*document.Document, error) {
	q := sq.Select(documentColumns...).
		From("documents").
		Where(sq.And{
			sq.Eq{"parent_id": nil},
			sq.Or{sq.Eq{"category": nil}, sq.Eq{"category": ""}},
		}).
		OrderBy("name", "id")

	docs, err := database.Query(ctx, r.db, q, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("list uncategorized documents: %w", err)
	}
	return docs, nil
}

// Get returns document.ErrNotFound when no row has the id.
func (r *SQLRepo) Get(ctx context.Context, id int64) (*document.Document, error) {
	d, ok, err := database.Get(ctx, r.db, sq.Select(documentColumns...).From("documents").Where(sq.Eq{"id": id}), scanDocument)
	if err != nil {
		return nil, fmt.Errorf("get document %d: %w", id, err)
	}
	if !ok {
		return nil, document.ErrNotFound
	}
	return d, nil
}

// Insert writes a new top-level draft and returns its id.
func (r *SQLRepo) Insert(ctx context.Context, in document.CreateInput) (int64, error) {
	res, err := r.db.Run(ctx, sq.Insert("documents").
		Columns("name", "category", "status", "content", "parent_id").
		Values(in.Name, in.Category, document.StatusDraft, in.Content, nil))
	if err != nil {
		return 0, fmt.Errorf("insert document: %w", translate(err))
	}
	return res.LastInsertID, nil
}

// Update applies the fields present in p and returns the affected-row count.
// An empty patch is not a statement; callers check Patch.Empty first.
func (r *SQLRepo) Update(ctx context.Context, id int64, p document.Patch) (int64, error) {
	if p.Empty() {
		return 0, errors.New("update document: empty patch")
	}
	q := sq.Update("documents").Where(sq.Eq{"id": id})
	if p.Name.Set {
		q = q.Set("name", p.Name.Value)
	}
	if p.Category.Set {
		q = q.Set("category", nullable(p.Category))
	}
	if p.Status.Set {
		q = q.Set("status", p.Status.Value)
	}
	if p.ParentID.Set {
		q = q.Set("parent_id", nullable(p.ParentID))
	}
	res, err := r.db.Run(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("update document %d: %w", id, translate(err))
	}
	return res.RowsAffected, nil
}

// Publish sets the published status and the publication date.
func (r *SQLRepo) Publish(ctx context.Context, id int64, date string) (int64, error) {
	res, err := r.db.Run(ctx, sq.Update("documents").
		Set("status", document.StatusPublished).
		Set("publication_date", date).
		Where(sq.Eq{"id": id}))
	if err != nil {
		return 0, fmt.Errorf("publish document %d: %w", id, translate(err))
	}
	return res.RowsAffected, nil
}

// CountAddendums returns how many documents reference id as their parent.
func (r *SQLRepo) CountAddendums(ctx context.Context, id int64) (int, error) {
	n, _, err := database.Get(ctx, r.db, sq.Select("COUNT(*)").From("documents").Where(sq.Eq{"parent_id": id}), scanInt)
	if err != nil {
		return 0, fmt.Errorf("count addendums of %d: %w", id, err)
	}
	return n, nil
}

// Upsert inserts d with its own id or overwrites the row that already has it.
func (r *SQLRepo) Upsert(ctx context.Context, d *document.Document) error {
	status := d.Status
	if status == "" {
		status = document.StatusDraft
	}
	q := sq.Insert("documents").
		Columns(documentColumns...).
		Values(d.ID, d.Name, d.Category, d.PublicationDate, status, d.Content, d.ParentID).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			publication_date = excluded.publication_date,
			status = excluded.status,
			content = excluded.content,
			parent_id = excluded.parent_id`)
	if _, err := r.db.Run(ctx, q); err != nil {
		return fmt.Errorf("upsert document %d: %w", d.ID, translate(err))
	}
	return nil
}

func nullable[T any](o document.Optional[T]) any {
	if o.Null {
		return nil
	}
	return o.Value
}

// translate turns constraint failures into validation errors; anything else
// is returned unchanged.
func translate(err error) error {
	var se sqlite3.Error
	if !errors.As(err, &se) || se.Code != sqlite3.ErrConstraint {
		return err
	}
	switch se.ExtendedCode {
	case sqlite3.ErrConstraintForeignKey:
		return document.Invalid("parent_id", "parent document does not exist")
	case sqlite3.ErrConstraintCheck:
		return document.Invalid("name", "document name cannot be empty")
	case sqlite3.ErrConstraintNotNull:
		field := "name"
		if i := strings.LastIndex(se.Error(), "documents."); i >= 0 {
			field = se.Error()[i+len("documents."):]
		}
		return document.Invalid(field, fmt.Sprintf("document %s cannot be empty", field))
	case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
		return document.Invalid("id", "document id already exists")
	}
	return err
}

func scanDocument(s database.Scanner) (*document.Document, error) {
	var (
		d        document.Document
		category sql.NullString
		pubDate  sql.NullString
		content  sql.NullString
		parentID sql.NullInt64
	)
	if err := s.Scan(&d.ID, &d.Name, &category, &pubDate, &d.Status, &content, &parentID); err != nil {
		return nil, err
	}
	d.Category = category.String
	d.Content = content.String
	if pubDate.Valid {
		d.PublicationDate = &pubDate.String
	}
	if parentID.Valid {
		d.ParentID = &parentID.Int64
	}
	d.Addendums = []document.Addendum{}
	return &d, nil
}

func scanJoinedRow(s database.Scanner) (document.JoinedRow, error) {
	var (
		row                            document.JoinedRow
		category, pubDate, content     sql.NullString
		addID                          sql.NullInt64
		addName, addStatus, addPubDate sql.NullString
	)
	err := s.Scan(&row.ID, &row.Name, &category, &pubDate, &row.Status, &content,
		&addID, &addName, &addStatus, &addPubDate)
	if err != nil {
		return row, err
	}
	row.Category = category.String
	row.Content = content.String
	if pubDate.Valid {
		row.PublicationDate = &pubDate.String
	}
	if addID.Valid {
		row.AddendumID = &addID.Int64
		row.AddendumName = &addName.String
		row.AddendumStatus = &addStatus.String
		if addPubDate.Valid {
			row.AddendumPublicationDate = &addPubDate.String
		}
	}
	return row, nil
}

func scanString(s database.Scanner) (string, error) {
	var v string
	err := s.Scan(&v)
	return v, err
}

func scanInt(s database.Scanner) (int, error) {
	var v int
	err := s.Scan(&v)
	return v, err
}
