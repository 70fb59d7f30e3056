// Package importer reads bulk document files for the import command.
package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/docregistry/docregistry/internal/document"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Record is one document in an import file. Ids are kept so that
// addendums can reference their parent.
//
// Older export files use the Dutch keys titel, categorie and
// publicatiedatum; they are read when the English key is absent.
type Record struct {
	ID              int64   `json:"id" yaml:"id"`
	Name            string  `json:"name" yaml:"name"`
	Category        string  `json:"category" yaml:"category"`
	PublicationDate *string `json:"publicationDate" yaml:"publicationDate"`
	Status          string  `json:"status" yaml:"status"`
	Content         string  `json:"content" yaml:"content"`
	ParentID        *int64  `json:"parentId" yaml:"parentId"`

	Titel           string  `json:"titel" yaml:"titel"`
	Categorie       string  `json:"categorie" yaml:"categorie"`
	Publicatiedatum *string `json:"publicatiedatum" yaml:"publicatiedatum"`
}

type file struct {
	Documents []Record `json:"documents" yaml:"documents"`
}

// FormatOf picks the decoder from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported import file %q: want .json, .yaml or .yml", path)
}

// Load reads and decodes the import file at path.
func Load(path string) ([]*document.Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()
	return Decode(f, format)
}

// Decode reads a {documents: [...]} payload in the given format.
func Decode(r io.Reader, format Format) ([]*document.Document, error) {
	var f file
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&f); err != nil {
			return nil, fmt.Errorf("decode json import: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decode yaml import: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown import format %q", format)
	}

	docs := make([]*document.Document, 0, len(f.Documents))
	for _, rec := range f.Documents {
		docs = append(docs, rec.toDocument())
	}
	return docs, nil
}

func (r Record) toDocument() *document.Document {
	if r.Name == "" {
		r.Name = r.Titel
	}
	if r.Category == "" {
		r.Category = r.Categorie
	}
	if r.PublicationDate == nil {
		r.PublicationDate = r.Publicatiedatum
	}
	return &document.Document{
		ID:              r.ID,
		Name:            r.Name,
		Category:        r.Category,
		PublicationDate: r.PublicationDate,
		Status:          r.Status,
		Content:         r.Content,
		ParentID:        r.ParentID,
		Addendums:       []document.Addendum{},
	}
}
