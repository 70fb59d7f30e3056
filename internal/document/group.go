package document

// JoinedRow is one row of the parent/addendum outer join. The Addendum*
// fields are nil when the parent has no addendums.
type JoinedRow struct {
	ID              int64
	Name            string
	Category        string
	PublicationDate *string
	Status          string
	Content         string

	AddendumID              *int64
	AddendumName            *string
	AddendumStatus          *string
	AddendumPublicationDate *string
}

// GroupAddendums folds joined rows into parents carrying their addendums.
// Parents keep first-seen order and addendums keep row order; callers rely
// on the query's ORDER BY for both.
func GroupAddendums(rows []JoinedRow) []*Document {
	out := make([]*Document, 0, len(rows))
	byID := make(map[int64]*Document, len(rows))
	for _, r := range rows {
		parent, ok := byID[r.ID]
		if !ok {
			parent = &Document{
				ID:              r.ID,
				Name:            r.Name,
				Category:        r.Category,
				PublicationDate: r.PublicationDate,
				Status:          r.Status,
				Content:         r.Content,
				Addendums:       []Addendum{},
			}
			byID[r.ID] = parent
			out = append(out, parent)
		}
		if r.AddendumID == nil {
			continue
		}
		a := Addendum{ID: *r.AddendumID, PublicationDate: r.AddendumPublicationDate}
		if r.AddendumName != nil {
			a.Name = *r.AddendumName
		}
		if r.AddendumStatus != nil {
			a.Status = *r.AddendumStatus
		}
		parent.Addendums = append(parent.Addendums, a)
	}
	return out
}
