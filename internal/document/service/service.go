package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/docregistry/docregistry/internal/database"
	"github.com/docregistry/docregistry/internal/document"
	"github.com/docregistry/docregistry/internal/document/repository"
	"github.com/docregistry/docregistry/pkg/logger"
	"github.com/docregistry/docregistry/pkg/metrics"
)

// Service defines the document business operations used by the handler layer.
type Service interface {
	List(ctx context.Context) ([]*document.Document, error)
	ListUncategorized(ctx context.Context) ([]*document.Document, error)
	Get(ctx context.Context, id int64) (*document.Document, error)
	Create(ctx context.Context, in document.CreateInput) (*document.Document, error)
	Update(ctx context.Context, id int64, p document.Patch) (*document.Document, error)
	Publish(ctx context.Context, id int64) (*document.Document, error)
	Import(ctx context.Context, docs []*document.Document) (ImportReport, error)
}

// Repository is the storage contract the service runs on.
type Repository interface {
	ListJoined(ctx context.Context) ([]document.JoinedRow, error)
	ListUncategorized(ctx context.Context) ([]*document.Document, error)
	Get(ctx context.Context, id int64) (*document.Document, error)
	Insert(ctx context.Context, in document.CreateInput) (int64, error)
	Update(ctx context.Context, id int64, p document.Patch) (int64, error)
	Publish(ctx context.Context, id int64, date string) (int64, error)
	CountAddendums(ctx context.Context, id int64) (int, error)
	Upsert(ctx context.Context, d *document.Document) error
}

// Archiver receives a copy of every published document.
type Archiver interface {
	ArchiveDocument(ctx context.Context, d *document.Document) error
}

// ImportReport summarizes a bulk import.
type ImportReport struct {
	Imported int `json:"imported"`
	Failed   int `json:"failed"`
}

type Option func(*documentService)

// WithClock replaces time.Now as the source of publication dates.
func WithClock(now func() time.Time) Option {
	return func(s *documentService) { s.now = now }
}

// WithArchiver sends published snapshots to a.
func WithArchiver(a Archiver) Option {
	return func(s *documentService) { s.archiver = a }
}

// New returns a Service backed by repo.
func New(repo Repository, opts ...Option) Service {
	s := &documentService{repo: repo, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewSQLService returns a Service backed by the SQLite store.
func NewSQLService(db *database.DB, opts ...Option) Service {
	return New(repository.NewSQLRepo(db), opts...)
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService(opts ...Option) Service {
	return New(repository.NewMemoryRepo(), opts...)
}

type documentService struct {
	repo     Repository
	archiver Archiver
	now      func() time.Time
}

func observe(op string, err error) {
	outcome := metrics.OutcomeOK
	var ve *document.ValidationError
	switch {
	case err == nil:
	case errors.As(err, &ve):
		outcome = metrics.OutcomeInvalid
	case errors.Is(err, document.ErrNotFound):
		outcome = metrics.OutcomeNotFound
	default:
		outcome = metrics.OutcomeStoreError
	}
	metrics.DocumentOperations.WithLabelValues(op, outcome).Inc()
}

func (s *documentService) List(ctx context.Context) (out []*document.Document, err error) {
	defer func() { observe("list", err) }()
	rows, err := s.repo.ListJoined(ctx)
	if err != nil {
		return nil, err
	}
	return document.GroupAddendums(rows), nil
}

func (s *documentService) ListUncategorized(ctx context.Context) (out []*document.Document, err error) {
	defer func() { observe("list_uncategorized", err) }()
	return s.repo.ListUncategorized(ctx)
}

func (s *documentService) Get(ctx context.Context, id int64) (d *document.Document, err error) {
	defer func() { observe("get", err) }()
	return s.repo.Get(ctx, id)
}

func (s *documentService) Create(ctx context.Context, in document.CreateInput) (d *document.Document, err error) {
	defer func() { observe("create", err) }()

	in.Name = strings.TrimSpace(in.Name)
	in.Category = document.NormalizeCategory(in.Category)
	switch {
	case in.Name == "" && in.Category == "":
		return nil, document.Invalid("", "name and category are required")
	case in.Name == "":
		return nil, document.Invalid("name", "document name is required")
	case in.Category == "":
		return nil, document.Invalid("category", "document category is required")
	}

	id, err := s.repo.Insert(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *documentService) Update(ctx context.Context, id int64, p document.Patch) (d *document.Document, err error) {
	defer func() { observe("update", err) }()

	if err := normalizePatch(&p); err != nil {
		return nil, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Empty() {
		return current, nil
	}
	warnVocabulary(id, p.Status.Value, p.Category.Value)
	if p.ParentID.Set && !p.ParentID.Null {
		if err := s.checkParent(ctx, id, p.ParentID.Value); err != nil {
			return nil, err
		}
	}

	n, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, document.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// normalizePatch rejects blank names and statuses and maps vocabulary keys
// to stored values.
func normalizePatch(p *document.Patch) error {
	if p.Name.Set {
		p.Name.Value = strings.TrimSpace(p.Name.Value)
		if p.Name.Null || p.Name.Value == "" {
			return document.Invalid("name", "document name cannot be empty")
		}
	}
	if p.Status.Set {
		p.Status.Value = document.NormalizeStatus(p.Status.Value)
		if p.Status.Null || p.Status.Value == "" {
			return document.Invalid("status", "document status cannot be empty")
		}
	}
	if p.Category.Set && !p.Category.Null {
		p.Category.Value = document.NormalizeCategory(p.Category.Value)
	}
	return nil
}

// warnVocabulary logs stored values the front end has no option for.
// Empty arguments are not checked.
func warnVocabulary(id int64, status, category string) {
	if status != "" && !document.KnownStatus(status) {
		logger.Warnf("document %d: status %q is outside the vocabulary", id, status)
	}
	if !document.KnownCategory(category) {
		logger.Warnf("document %d: category %q is outside the vocabulary", id, category)
	}
}

// checkParent keeps the hierarchy one level deep.
func (s *documentService) checkParent(ctx context.Context, id, parentID int64) error {
	if parentID == id {
		return document.Invalid("parent_id", "a document cannot be its own addendum")
	}
	parent, err := s.repo.Get(ctx, parentID)
	if errors.Is(err, document.ErrNotFound) {
		return document.Invalid("parent_id", "parent document does not exist")
	}
	if err != nil {
		return err
	}
	if !parent.IsTopLevel() {
		return document.Invalid("parent_id", "parent document is itself an addendum")
	}
	n, err := s.repo.CountAddendums(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return document.Invalid("parent_id", "a document with addendums cannot become an addendum")
	}
	return nil
}

func (s *documentService) Publish(ctx context.Context, id int64) (d *document.Document, err error) {
	defer func() { observe("publish", err) }()

	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	n, err := s.repo.Publish(ctx, id, s.now().UTC().Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, document.ErrNotFound
	}
	d, err = s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.archiver != nil {
		if aerr := s.archiver.ArchiveDocument(ctx, d); aerr != nil {
			logger.Warnf("archive published document %d: %v", id, aerr)
		}
	}
	return d, nil
}

// Import upserts docs by id, parents before addendums. Addendums follow the
// same one-level rule as Update. Records that fail are logged and counted;
// the returned error is reserved for context cancellation.
func (s *documentService) Import(ctx context.Context, docs []*document.Document) (rep ImportReport, err error) {
	defer func() { observe("import", err) }()

	ordered := append([]*document.Document(nil), docs...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ParentID == nil && ordered[j].ParentID != nil
	})

	for _, d := range ordered {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if d.ID <= 0 || strings.TrimSpace(d.Name) == "" {
			logger.Warnf("import document %d: id and name are required", d.ID)
			rep.Failed++
			continue
		}
		if d.ParentID != nil {
			if err := s.checkParent(ctx, d.ID, *d.ParentID); err != nil {
				logger.Warnf("import document %d: %v", d.ID, err)
				rep.Failed++
				continue
			}
		}
		c := *d
		c.Status = document.NormalizeStatus(c.Status)
		c.Category = document.NormalizeCategory(c.Category)
		warnVocabulary(c.ID, c.Status, c.Category)
		if err := s.repo.Upsert(ctx, &c); err != nil {
			logger.Warnf("import document %d: %v", d.ID, err)
			rep.Failed++
			continue
		}
		logger.Debugf("imported document %d - %s", c.ID, c.Name)
		rep.Imported++
	}
	return rep, nil
}
