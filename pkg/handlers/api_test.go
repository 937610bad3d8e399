package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markan/pkg/access"
	"markan/pkg/errors"
	"markan/pkg/paths"
	"markan/pkg/services"
	"markan/pkg/storage"
	"markan/pkg/types"
)

func p(t *testing.T, slash string) string {
	t.Helper()
	n := paths.Normalize(filepath.FromSlash(slash))
	require.NotEmpty(t, n)
	return n
}

type apiFixture struct {
	fs     afero.Fs
	router http.Handler
	opener *services.FileOpener
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(p(t, "/appdata"), 0o755))
	require.NoError(t, fs.MkdirAll(p(t, "/ws"), 0o755))
	require.NoError(t, fs.MkdirAll(p(t, "/private"), 0o755))
	require.NoError(t, afero.WriteFile(fs, p(t, "/private/secret.md"), []byte("secret"), 0o644))

	now := time.Now()
	require.NoError(t, afero.WriteFile(fs, p(t, "/ws/a.md"), []byte("a"), 0o644))
	require.NoError(t, afero.WriteFile(fs, p(t, "/ws/b.md"), []byte("b"), 0o644))
	require.NoError(t, fs.Chtimes(p(t, "/ws/a.md"), now, now))
	require.NoError(t, fs.Chtimes(p(t, "/ws/b.md"), now.Add(-time.Hour), now.Add(-time.Hour)))

	authority, err := access.NewAuthority(p(t, "/appdata"), access.NewSession(), paths.Matcher{}, fs, nil)
	require.NoError(t, err)
	gateway := storage.NewGateway(fs, authority, nil)
	workspace := services.NewWorkspaceService(gateway, nil, nil, nil)
	opener := services.NewFileOpener(authority, nil)
	opener.MarkReady(func(string) {})

	h := NewAPIHandlers(gateway, workspace, services.NewAppPaths(p(t, "/appdata")), nil)
	r := chi.NewRouter()
	r.Route("/api", h.Routes)
	return &apiFixture{fs: fs, router: r, opener: opener}
}

func (f *apiFixture) post(t *testing.T, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeOK(t *testing.T, rec *httptest.ResponseRecorder) bool {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code)
	var resp okResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.OK
}

func TestWorkspaceAndListing(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.post(t, "/api/fs/list", pathRequest{Path: p(t, "/ws")})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	assert.False(t, decodeOK(t, f.post(t, "/api/workspace", pathRequest{Path: p(t, "/ws/a.md")})))
	assert.True(t, decodeOK(t, f.post(t, "/api/workspace", pathRequest{Path: p(t, "/ws")})))

	rec = f.post(t, "/api/fs/list", pathRequest{Path: p(t, "/ws")})
	require.Equal(t, http.StatusOK, rec.Code)
	var notes []types.FileDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notes))
	require.Len(t, notes, 2)
	assert.Equal(t, "a.md", notes[0].FileName)
	assert.Equal(t, "b.md", notes[1].FileName)
	assert.Greater(t, notes[0].ModifiedTime, notes[1].ModifiedTime)
}

func TestReadFileSentinel(t *testing.T) {
	f := newAPIFixture(t)
	require.True(t, decodeOK(t, f.post(t, "/api/workspace", pathRequest{Path: p(t, "/ws")})))

	rec := f.post(t, "/api/fs/read", pathRequest{Path: p(t, "/ws/a.md")})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"content":"a"}`, rec.Body.String())

	for _, denied := range []string{p(t, "/private/secret.md"), "/ws/../private/secret.md", ""} {
		rec = f.post(t, "/api/fs/read", pathRequest{Path: denied})
		require.Equal(t, http.StatusOK, rec.Code, denied)
		assert.JSONEq(t, `{"content":null}`, rec.Body.String(), denied)
	}
}

func TestWriteDeleteExists(t *testing.T) {
	f := newAPIFixture(t)
	require.True(t, decodeOK(t, f.post(t, "/api/workspace", pathRequest{Path: p(t, "/ws")})))

	assert.True(t, decodeOK(t, f.post(t, "/api/fs/write", writeRequest{Path: p(t, "/ws/sub/new.md"), Content: "hi"})))
	assert.True(t, decodeOK(t, f.post(t, "/api/fs/exists", pathRequest{Path: p(t, "/ws/sub/new.md")})))
	assert.True(t, decodeOK(t, f.post(t, "/api/fs/delete", pathRequest{Path: p(t, "/ws/sub/new.md")})))
	assert.False(t, decodeOK(t, f.post(t, "/api/fs/exists", pathRequest{Path: p(t, "/ws/sub/new.md")})))

	assert.False(t, decodeOK(t, f.post(t, "/api/fs/write", writeRequest{Path: p(t, "/private/x.md"), Content: "no"})))
	assert.False(t, decodeOK(t, f.post(t, "/api/fs/exists", pathRequest{Path: p(t, "/private/secret.md")})))
	assert.False(t, decodeOK(t, f.post(t, "/api/fs/delete", pathRequest{Path: p(t, "/private/secret.md")})))

	exists, err := afero.Exists(f.fs, p(t, "/private/secret.md"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestClientsCannotAdmitFiles(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.post(t, "/api/open-file", pathRequest{Path: p(t, "/private/secret.md")})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.post(t, "/api/fs/read", pathRequest{Path: p(t, "/private/secret.md")})
	assert.JSONEq(t, `{"content":null}`, rec.Body.String())
}

func TestHostAdmittedFileReadable(t *testing.T) {
	f := newAPIFixture(t)

	require.True(t, f.opener.Open(p(t, "/private/secret.md")))

	rec := f.post(t, "/api/fs/read", pathRequest{Path: p(t, "/private/secret.md")})
	assert.JSONEq(t, `{"content":"secret"}`, rec.Body.String())

	assert.False(t, decodeOK(t, f.post(t, "/api/fs/exists", pathRequest{Path: p(t, "/private")})))
}

func TestAppPath(t *testing.T) {
	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/app-path/userData", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, p(t, "/appdata"), resp["path"])

	req = httptest.NewRequest(http.MethodGet, "/api/app-path/unknown", nil)
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.JSONEq(t, `{"path":""}`, rec.Body.String())
}

func TestSaveNote(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.post(t, "/api/notes/save", saveRequest{Title: "Draft", Content: "x"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	var feErr errors.FrontendError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feErr))
	assert.Equal(t, "NO_WORKSPACE", feErr.Code)

	require.True(t, decodeOK(t, f.post(t, "/api/workspace", pathRequest{Path: p(t, "/ws")})))
	rec = f.post(t, "/api/notes/save", saveRequest{Title: "Draft", Content: "x"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"filePath":`+mustJSON(t, p(t, "/ws/Draft.md"))+`}`, rec.Body.String())

	rec = f.post(t, "/api/notes/save", saveRequest{FilePath: p(t, "/private/secret.md"), Content: "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotContains(t, rec.Body.String(), "private")
}

func TestMalformedJSON(t *testing.T) {
	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/fs/read", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var feErr errors.FrontendError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feErr))
	assert.Equal(t, "INVALID_JSON", feErr.Code)
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
