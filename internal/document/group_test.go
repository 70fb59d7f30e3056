package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestGroupAddendums(t *testing.T) {
	rows := []JoinedRow{
		{ID: 3, Name: "Adviesrapport", Category: CategoryAdvisory, Status: StatusPublished},
		{ID: 1, Name: "Beleidsnota", Category: CategoryCovenant, Status: StatusPublished,
			AddendumID: ptr(int64(4)), AddendumName: ptr("Bijlage A"), AddendumStatus: ptr(StatusPublished), AddendumPublicationDate: ptr("2025-05-16")},
		{ID: 1, Name: "Beleidsnota", Category: CategoryCovenant, Status: StatusPublished,
			AddendumID: ptr(int64(5)), AddendumName: ptr("Bijlage B"), AddendumStatus: ptr(StatusDraft)},
		{ID: 2, Name: "Samenwerking", Status: StatusDraft},
	}

	got := GroupAddendums(rows)
	require.Len(t, got, 3)

	// first-seen order, no re-sorting
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(1), got[1].ID)
	assert.Equal(t, int64(2), got[2].ID)

	assert.NotNil(t, got[0].Addendums)
	assert.Empty(t, got[0].Addendums)

	require.Len(t, got[1].Addendums, 2)
	assert.Equal(t, Addendum{ID: 4, Name: "Bijlage A", Status: StatusPublished, PublicationDate: ptr("2025-05-16")}, got[1].Addendums[0])
	assert.Equal(t, int64(5), got[1].Addendums[1].ID)
	assert.Nil(t, got[1].Addendums[1].PublicationDate)

	assert.Empty(t, got[2].Addendums)
}

func TestGroupAddendums_Empty(t *testing.T) {
	got := GroupAddendums(nil)
	require.NotNil(t, got)
	require.Empty(t, got)
}
