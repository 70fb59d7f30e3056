package document

// Document is a registry entry. A document with a ParentID is an addendum of
// that parent; top-level documents carry their addendums in listings.
type Document struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Category        string     `json:"category"`
	PublicationDate *string    `json:"publicationDate"`
	Status          string     `json:"status"`
	Content         string     `json:"content"`
	ParentID        *int64     `json:"parentId,omitempty"`
	Addendums       []Addendum `json:"addendums"`
}

// Addendum is the summary of a child document shown under its parent.
type Addendum struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Status          string  `json:"status"`
	PublicationDate *string `json:"publicationDate"`
}

// IsTopLevel reports whether d has no parent.
func (d *Document) IsTopLevel() bool { return d.ParentID == nil }

// CreateInput carries the fields accepted when creating a document.
type CreateInput struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Content  string `json:"content"`
}

// Patch is a partial update. Only fields marked Set are applied.
type Patch struct {
	Name     Optional[string] `json:"name"`
	Category Optional[string] `json:"category"`
	Status   Optional[string] `json:"status"`
	ParentID Optional[int64]  `json:"parent_id"`
}

// Empty reports whether the patch names no recognized field.
func (p Patch) Empty() bool {
	return !p.Name.Set && !p.Category.Set && !p.Status.Set && !p.ParentID.Set
}
