package document

import "strings"

// Status values as stored. The front end addresses them by key.
const (
	StatusDraft     = "Concept"
	StatusAwaiting  = "In afwachting"
	StatusPublished = "Gepubliceerd"
	StatusArchived  = "Gearchiveerd"
)

// Category values as stored. The empty category means unknown.
const (
	CategoryCovenant        = "Convenant"
	CategoryAdvisory        = "Adviesstuk"
	CategoryAdvisoryCouncil = "Adviescollege"
	CategoryOther           = "Overige"
	CategoryUnknown         = ""
)

const unknownLabel = "Onbekend"

// StatusOption is one entry of the status vocabulary.
type StatusOption struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// CategoryOption is one entry of the category vocabulary.
type CategoryOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var statuses = []StatusOption{
	{Key: "concept", Value: StatusDraft, Label: StatusDraft},
	{Key: "in_afwachting", Value: StatusAwaiting, Label: StatusAwaiting},
	{Key: "gepubliceerd", Value: StatusPublished, Label: StatusPublished},
	{Key: "gearchiveerd", Value: StatusArchived, Label: StatusArchived},
}

var categories = []CategoryOption{
	{Value: CategoryCovenant, Label: CategoryCovenant},
	{Value: CategoryAdvisory, Label: CategoryAdvisory},
	{Value: CategoryAdvisoryCouncil, Label: CategoryAdvisoryCouncil},
	{Value: CategoryOther, Label: CategoryOther},
	{Value: CategoryUnknown, Label: unknownLabel},
}

// Statuses returns the status vocabulary in display order.
func Statuses() []StatusOption { return append([]StatusOption(nil), statuses...) }

// Categories returns the category vocabulary in display order.
func Categories() []CategoryOption { return append([]CategoryOption(nil), categories...) }

// NormalizeStatus maps a front-end key or a stored value (any case) to the
// stored value. Unrecognized input is returned trimmed and unchanged, since
// storage accepts values outside the vocabulary.
func NormalizeStatus(s string) string {
	t := strings.TrimSpace(s)
	for _, o := range statuses {
		if strings.EqualFold(t, o.Key) || strings.EqualFold(t, o.Value) {
			return o.Value
		}
	}
	return t
}

// NormalizeCategory maps a category (any case) to its stored value.
// Unrecognized input is returned trimmed and unchanged.
func NormalizeCategory(c string) string {
	t := strings.TrimSpace(c)
	for _, o := range categories {
		if o.Value != "" && strings.EqualFold(t, o.Value) {
			return o.Value
		}
	}
	return t
}

// KnownStatus reports whether s is a stored status value.
func KnownStatus(s string) bool {
	for _, o := range statuses {
		if s == o.Value {
			return true
		}
	}
	return false
}

// KnownCategory reports whether c is a stored category value, including unknown.
func KnownCategory(c string) bool {
	for _, o := range categories {
		if c == o.Value {
			return true
		}
	}
	return false
}
