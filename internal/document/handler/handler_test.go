package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/docregistry/docregistry/internal/database"
	"github.com/docregistry/docregistry/internal/document"
	"github.com/docregistry/docregistry/internal/document/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func newRouter() *gin.Engine {
	g := gin.New()
	clock := func() time.Time { return time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC) }
	RegisterDocumentRoutes(g, service.NewMemoryService(service.WithClock(clock)))
	return g
}

func do(t *testing.T, g *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	g.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestDocumentHandler_EndToEnd(t *testing.T) {
	g := newRouter()

	w := do(t, g, http.MethodPost, "/api/documents", strings.NewReader(`{"name":"A","category":"Convenant"}`))
	require.Equal(t, http.StatusCreated, w.Code)
	a := decode[map[string]any](t, w)
	require.Equal(t, float64(1), a["id"])
	require.Equal(t, "Concept", a["status"])
	require.Equal(t, []any{}, a["addendums"])
	require.Nil(t, a["publicationDate"])
	require.NotContains(t, a, "parentId")

	w = do(t, g, http.MethodPost, "/api/documents", strings.NewReader(`{"name":"B","category":"Overige","content":"bijlage"}`))
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, g, http.MethodPut, "/api/documents/2", strings.NewReader(`{"parent_id":1}`))
	require.Equal(t, http.StatusOK, w.Code)
	b := decode[document.Document](t, w)
	require.NotNil(t, b.ParentID)
	require.Equal(t, int64(1), *b.ParentID)

	w = do(t, g, http.MethodGet, "/api/documents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]document.Document](t, w)
	require.Len(t, list, 1)
	require.Equal(t, int64(1), list[0].ID)
	require.Len(t, list[0].Addendums, 1)
	require.Equal(t, int64(2), list[0].Addendums[0].ID)
	require.Equal(t, "B", list[0].Addendums[0].Name)
}

func TestDocumentHandler_GetAndErrors(t *testing.T) {
	g := newRouter()
	do(t, g, http.MethodPost, "/api/documents", strings.NewReader(`{"name":"Nota","category":"Adviesstuk","content":"x"}`))

	w := do(t, g, http.MethodGet, "/api/documents/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	d := decode[document.Document](t, w)
	require.Equal(t, "Nota", d.Name)
	require.Equal(t, "x", d.Content)
	require.Empty(t, d.Addendums)

	for _, tc := range []struct {
		method, path string
		body         string
	}{
		{http.MethodGet, "/api/documents/999999", ""},
		{http.MethodPut, "/api/documents/999999", `{"name":"x"}`},
		{http.MethodPut, "/api/documents/999999/publish", ""},
	} {
		var body io.Reader
		if tc.body != "" {
			body = strings.NewReader(tc.body)
		}
		w := do(t, g, tc.method, tc.path, body)
		require.Equal(t, http.StatusNotFound, w.Code, "%s %s", tc.method, tc.path)
		require.Equal(t, "not found", decode[map[string]any](t, w)["error"])
	}

	w = do(t, g, http.MethodGet, "/api/documents/abc", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandler_Validation(t *testing.T) {
	g := newRouter()

	w := do(t, g, http.MethodPost, "/api/documents", strings.NewReader(`{"category":"Convenant"}`))
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[map[string]any](t, w)
	require.Equal(t, "validation error", body["error"])
	require.Equal(t, "document name is required", body["details"])

	w = do(t, g, http.MethodPost, "/api/documents", strings.NewReader(`{"name":`))
	require.Equal(t, http.StatusBadRequest, w.Code)

	do(t, g, http.MethodPost, "/api/documents", strings.NewReader(`{"name":"Blijft","category":"Convenant"}`))
	w = do(t, g, http.MethodPut, "/api/documents/1", strings.NewReader(`{"name":""}`))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, g, http.MethodGet, "/api/documents/1", nil)
	require.Equal(t, "Blijft", decode[document.Document](t, w).Name)
}

func TestDocumentHandler_EmptyUpdate(t *testing.T) {
	g := newRouter()
	do(t, g, http.MethodPost, "/api/documents", strings.NewReader(`{"name":"Nota","category":"Convenant"}`))

	for _, body := range []string{"", "{}", `{"unknown":true}`} {
		w := do(t, g, http.MethodPut, "/api/documents/1", strings.NewReader(body))
		require.Equal(t, http.StatusOK, w.Code, "body %q", body)
		d := decode[document.Document](t, w)
		require.Equal(t, "Nota", d.Name)
		require.Equal(t, document.StatusDraft, d.Status)
	}
}

func TestDocumentHandler_Publish(t *testing.T) {
	g := newRouter()
	do(t, g, http.MethodPost, "/api/documents", strings.NewReader(`{"name":"Nota","category":"Convenant"}`))

	w := do(t, g, http.MethodPut, "/api/documents/1/publish", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success  bool              `json:"success"`
		Message  string            `json:"message"`
		Document document.Document `json:"document"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "Document published successfully", resp.Message)
	require.Equal(t, document.StatusPublished, resp.Document.Status)
	require.Equal(t, "2025-07-01", *resp.Document.PublicationDate)
}

func TestDocumentHandler_Uncategorized(t *testing.T) {
	g := newRouter()
	do(t, g, http.MethodPost, "/api/documents", strings.NewReader(`{"name":"Nota","category":"Convenant"}`))
	do(t, g, http.MethodPut, "/api/documents/1", strings.NewReader(`{"category":null}`))

	w := do(t, g, http.MethodGet, "/api/documents/uncategorized", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]document.Document](t, w)
	require.Len(t, list, 1)
	require.Equal(t, "", list[0].Category)
}

func TestVocabulary(t *testing.T) {
	g := newRouter()
	w := do(t, g, http.MethodGet, "/api/vocabulary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var v struct {
		Categories []document.CategoryOption `json:"categories"`
		Statuses   []document.StatusOption   `json:"statuses"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	require.Len(t, v.Statuses, 4)
	require.Equal(t, "in_afwachting", v.Statuses[1].Key)
	require.Equal(t, "Onbekend", v.Categories[len(v.Categories)-1].Label)
}

// brokenStore fails every call the way the SQLite store does when the disk goes away.
type brokenStore struct{}

var errDisk = &database.StorageError{Op: "run", Err: errors.New("disk I/O error")}

func (brokenStore) List(context.Context) ([]*document.Document, error) { return nil, errDisk }
func (brokenStore) ListUncategorized(context.Context) ([]*document.Document, error) {
	return nil, errDisk
}
func (brokenStore) Get(context.Context, int64) (*document.Document, error) { return nil, errDisk }
func (brokenStore) Create(context.Context, document.CreateInput) (*document.Document, error) {
	return nil, errDisk
}
func (brokenStore) Update(context.Context, int64, document.Patch) (*document.Document, error) {
	return nil, errDisk
}
func (brokenStore) Publish(context.Context, int64) (*document.Document, error) { return nil, errDisk }
func (brokenStore) Import(context.Context, []*document.Document) (service.ImportReport, error) {
	return service.ImportReport{}, errDisk
}

func TestDocumentHandler_StoreFailure(t *testing.T) {
	g := gin.New()
	RegisterDocumentRoutes(g, brokenStore{})

	for _, tc := range []struct {
		method, path, body, details string
	}{
		{http.MethodGet, "/api/documents", "", "failed to list documents"},
		{http.MethodGet, "/api/documents/uncategorized", "", "failed to list uncategorized documents"},
		{http.MethodGet, "/api/documents/1", "", "failed to get document"},
		{http.MethodPost, "/api/documents", `{"name":"A","category":"Convenant"}`, "failed to create document"},
		{http.MethodPut, "/api/documents/1", `{"name":"B"}`, "failed to update document"},
		{http.MethodPut, "/api/documents/1/publish", "", "failed to publish document"},
	} {
		var body io.Reader
		if tc.body != "" {
			body = strings.NewReader(tc.body)
		}
		w := do(t, g, tc.method, tc.path, body)
		require.Equal(t, http.StatusInternalServerError, w.Code, "%s %s", tc.method, tc.path)
		resp := decode[map[string]string](t, w)
		require.Equal(t, "internal error", resp["error"])
		require.Equal(t, tc.details, resp["details"])
		require.NotContains(t, w.Body.String(), "disk I/O")
		require.NotContains(t, w.Body.String(), "storage:")
	}
}
