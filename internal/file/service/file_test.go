package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwa-portal/rwa-backend/internal/file/biz"
	"github.com/rwa-portal/rwa-backend/internal/file/data"
)

// memRepo is an in-memory biz.FileRepo guarded by a mutex.
type memRepo struct {
	mu    sync.Mutex
	files map[string]*biz.File
	order []string // insertion order, oldest first
}

func newMemRepo() *memRepo {
	return &memRepo{files: make(map[string]*biz.File)}
}

func (r *memRepo) Create(_ context.Context, f *biz.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *f
	r.files[f.ID] = &cp
	r.order = append(r.order, f.ID)
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*biz.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return nil, biz.ErrFileNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *memRepo) List(_ context.Context, req *biz.ListFilesRequest) ([]*biz.File, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*biz.File
	for i := len(r.order) - 1; i >= 0; i-- { // newest first
		f := r.files[r.order[i]]
		if req.MimeType != "" && f.MimeType != req.MimeType {
			continue
		}
		if req.Search != "" && !strings.Contains(strings.ToLower(f.OriginalName), strings.ToLower(req.Search)) {
			continue
		}
		cp := *f
		matched = append(matched, &cp)
	}

	total := int64(len(matched))
	start := (req.Page - 1) * req.PageSize
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + req.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[id]; !ok {
		return biz.ErrFileNotFound
	}
	delete(r.files, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memRepo) IncrementDownloads(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return biz.ErrFileNotFound
	}
	f.Downloads++
	return nil
}

func (r *memRepo) Stats(_ context.Context) (*biz.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &biz.Stats{}
	byType := make(map[string]*biz.TypeStat)
	for _, f := range r.files {
		s.TotalFiles++
		s.TotalSize += f.Size
		s.TotalDownloads += f.Downloads
		t, ok := byType[f.MimeType]
		if !ok {
			t = &biz.TypeStat{MimeType: f.MimeType}
			byType[f.MimeType] = t
		}
		t.Count++
		t.TotalSize += f.Size
	}
	if s.TotalFiles > 0 {
		s.AvgSize = float64(s.TotalSize) / float64(s.TotalFiles)
	}
	for _, t := range byType {
		s.FilesByType = append(s.FilesByType, *t)
	}
	sort.Slice(s.FilesByType, func(i, j int) bool {
		return s.FilesByType[i].MimeType < s.FilesByType[j].MimeType
	})
	return s, nil
}

type testEnv struct {
	router *gin.Engine
	repo   *memRepo
	store  *data.DiskStore
}

func newTestEnv(t *testing.T, cfg biz.Config) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := data.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	repo := newMemRepo()
	uc := biz.NewFileUseCase(repo, store, cfg, nil)
	svc := NewFileService(uc, nil)

	router := gin.New()
	api := router.Group("/api")
	svc.RegisterRoutes(api, nil)

	return &testEnv{router: router, repo: repo, store: store}
}

func defaultConfig() biz.Config {
	return biz.Config{
		MaxFileSize:  10 << 20,
		AllowedTypes: []string{"application/pdf", "image/jpeg", "image/png"},
		MinPageSize:  1,
		MaxPageSize:  100,
	}
}

func multipartBody(t *testing.T, fileName, contentType string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func (e *testEnv) upload(t *testing.T, fileName, contentType string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, fileName, contentType, content, fields)
	req := httptest.NewRequest(http.MethodPost, "/api/files", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func assertErrorEnvelope(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, w.Code)
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decode(t, w, &body)
	assert.False(t, body.Success)
	assert.Equal(t, code, body.Error.Code)
	assert.NotEmpty(t, body.Error.Message)
}

func TestUploadAccepted(t *testing.T) {
	env := newTestEnv(t, defaultConfig())

	content := bytes.Repeat([]byte("x"), 2<<20)
	w := env.upload(t, "minutes 2024 (final).pdf", "application/pdf", content, map[string]string{
		"description": "Board minutes",
		"tags":        "minutes, board ,2024",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Success bool                 `json:"success"`
		File    UploadedFileResponse `json:"file"`
	}
	decode(t, w, &body)
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.File.ID)
	assert.Equal(t, "minutes 2024 (final).pdf", body.File.OriginalName)
	assert.Equal(t, int64(2<<20), body.File.Size)
	assert.Equal(t, "application/pdf", body.File.MimeType)
	assert.Equal(t, "/api/files/"+body.File.ID+"/download", body.File.URL)

	stored, err := env.repo.GetByID(context.Background(), body.File.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"minutes", "board", "2024"}, stored.Tags)
	assert.Equal(t, "Board minutes", stored.Description)
}

func TestUploadWithoutFileField(t *testing.T) {
	env := newTestEnv(t, defaultConfig())

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	require.NoError(t, mw.WriteField("description", "no file here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files", buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assertErrorEnvelope(t, w, http.StatusBadRequest, "NO_FILE")
}

func TestUploadRejectsDisallowedType(t *testing.T) {
	env := newTestEnv(t, defaultConfig())

	w := env.upload(t, "virus.exe", "application/x-msdownload", []byte("MZ"), nil)
	assertErrorEnvelope(t, w, http.StatusBadRequest, "INVALID_FILE")
	assert.Empty(t, env.repo.order)
}

func TestUploadRejectsOversize(t *testing.T) {
	env := newTestEnv(t, defaultConfig())

	content := bytes.Repeat([]byte("y"), 15<<20)
	w := env.upload(t, "big.pdf", "application/pdf", content, nil)

	assertErrorEnvelope(t, w, http.StatusBadRequest, "FILE_TOO_LARGE")
	assert.Empty(t, env.repo.order, "oversize upload must not create a record")
}

// meteredReader counts how many bytes the server actually pulls from the
// request body.
type meteredReader struct {
	r io.Reader
	n int64
}

func (m *meteredReader) Read(p []byte) (int, error) {
	n, err := m.r.Read(p)
	m.n += int64(n)
	return n, err
}

func TestUploadAbandonsOversizeBodyEarly(t *testing.T) {
	cfg := defaultConfig()
	cfg.MaxFileSize = 1 << 20
	env := newTestEnv(t, cfg)

	content := bytes.Repeat([]byte("z"), 40<<20)
	body, ct := multipartBody(t, "huge.pdf", "application/pdf", content, nil)

	meter := &meteredReader{r: body}
	req := httptest.NewRequest(http.MethodPost, "/api/files", meter)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assertErrorEnvelope(t, w, http.StatusBadRequest, "FILE_TOO_LARGE")
	assert.Empty(t, env.repo.order)
	assert.Less(t, meter.n, int64(4<<20), "the body must be cut off at the cap, not drained")
}

func TestListPaginatesNewestFirst(t *testing.T) {
	env := newTestEnv(t, defaultConfig())

	for i := 0; i < 25; i++ {
		w := env.upload(t, fmt.Sprintf("doc-%02d.pdf", i), "application/pdf", []byte("content"), nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	seen := make(map[string]bool)
	var pages int64
	for page := 1; ; page++ {
		w := env.do(http.MethodGet, fmt.Sprintf("/api/files?page=%d&limit=12", page))
		require.Equal(t, http.StatusOK, w.Code)

		var body FileListResponse
		decode(t, w, &body)
		assert.Equal(t, int64(25), body.TotalItems)
		assert.Equal(t, int64(3), body.TotalPages)
		assert.Equal(t, page, body.Page)
		assert.Equal(t, 12, body.Limit)

		for _, f := range body.Data {
			assert.False(t, seen[f.ID], "record %s returned twice", f.ID)
			seen[f.ID] = true
		}
		pages = body.TotalPages
		if int64(page) >= pages {
			break
		}
	}
	assert.Len(t, seen, 25, "every record must appear exactly once across pages")

	// newest upload leads page 1
	w := env.do(http.MethodGet, "/api/files?page=1&limit=12")
	var first FileListResponse
	decode(t, w, &first)
	require.NotEmpty(t, first.Data)
	assert.Equal(t, "doc-24.pdf", first.Data[0].OriginalName)
}

func TestListDefaults(t *testing.T) {
	env := newTestEnv(t, defaultConfig())

	w := env.do(http.MethodGet, "/api/files")
	require.Equal(t, http.StatusOK, w.Code)

	var body FileListResponse
	decode(t, w, &body)
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 12, body.Limit)
	assert.Equal(t, int64(0), body.TotalItems)
	assert.NotNil(t, body.Data)
}

func TestDownloadStreamsContent(t *testing.T) {
	env := newTestEnv(t, defaultConfig())

	content := []byte("%PDF-1.4 fake content")
	up := env.upload(t, "report.pdf", "application/pdf", content, nil)
	require.Equal(t, http.StatusCreated, up.Code)

	var created struct {
		File UploadedFileResponse `json:"file"`
	}
	decode(t, up, &created)

	w := env.do(http.MethodGet, "/api/files/"+created.File.ID+"/download")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="report.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, fmt.Sprint(len(content)), w.Header().Get("Content-Length"))
	assert.Equal(t, content, w.Body.Bytes())

	f, err := env.repo.GetByID(context.Background(), created.File.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.Downloads, "a completed stream increments the counter once")
}

func TestDownloadMissingContent(t *testing.T) {
	env := newTestEnv(t, defaultConfig())

	up := env.upload(t, "ghost.pdf", "application/pdf", []byte("bytes"), nil)
	require.Equal(t, http.StatusCreated, up.Code)

	var created struct {
		File UploadedFileResponse `json:"file"`
	}
	decode(t, up, &created)

	// rip the bytes out from under the record
	f, err := env.repo.GetByID(context.Background(), created.File.ID)
	require.NoError(t, err)
	require.NoError(t, env.store.Delete(context.Background(), f.StoredName))

	w := env.do(http.MethodGet, "/api/files/"+created.File.ID+"/download")
	assertErrorEnvelope(t, w, http.StatusNotFound, "FILE_NOT_FOUND")

	// the record survives the consistency fault
	_, err = env.repo.GetByID(context.Background(), created.File.ID)
	assert.NoError(t, err)

	after, err := env.repo.GetByID(context.Background(), created.File.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), after.Downloads, "a failed download must not count")
}

// faultOpenStore stages bytes normally but hands out readers that fail
// before the first byte.
type faultOpenStore struct {
	*data.DiskStore
}

func (s *faultOpenStore) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(&faultReader{}), nil
}

type faultReader struct{}

func (*faultReader) Read([]byte) (int, error) {
	return 0, errors.New("read: device fault")
}

func TestDownloadFailureBeforeFirstByteClearsHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	disk, err := data.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	repo := newMemRepo()
	uc := biz.NewFileUseCase(repo, &faultOpenStore{disk}, defaultConfig(), nil)
	svc := NewFileService(uc, nil)

	router := gin.New()
	api := router.Group("/api")
	svc.RegisterRoutes(api, nil)

	body, ct := multipartBody(t, "report.pdf", "application/pdf", bytes.Repeat([]byte("x"), 12345), nil)
	up := httptest.NewRequest(http.MethodPost, "/api/files", body)
	up.Header.Set("Content-Type", ct)
	uw := httptest.NewRecorder()
	router.ServeHTTP(uw, up)
	require.Equal(t, http.StatusCreated, uw.Code)

	var created struct {
		File UploadedFileResponse `json:"file"`
	}
	decode(t, uw, &created)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/files/"+created.File.ID+"/download", nil))

	assertErrorEnvelope(t, w, http.StatusInternalServerError, "STREAM_ERROR")

	// the attachment headers must not survive into the JSON error, or the
	// declared length would not match the body on a real connection
	assert.Empty(t, w.Header().Get("Content-Length"))
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestUploadLimiterGuardsUploadsOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)

	disk, err := data.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	uc := biz.NewFileUseCase(newMemRepo(), disk, defaultConfig(), nil)
	svc := NewFileService(uc, nil)

	var hits int
	limiter := func(c *gin.Context) { hits++; c.Next() }

	router := gin.New()
	api := router.Group("/api")
	svc.RegisterRoutes(api, limiter)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/files", nil))
	assert.Equal(t, 1, hits, "the limiter sits in front of uploads")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/files", nil))
	assert.Equal(t, 1, hits, "reads are not rate limited")
}

func TestDownloadUnknownID(t *testing.T) {
	env := newTestEnv(t, defaultConfig())

	w := env.do(http.MethodGet, "/api/files/no-such-id/download")
	assertErrorEnvelope(t, w, http.StatusNotFound, "NOT_FOUND")
}

func TestGetMetadata(t *testing.T) {
	env := newTestEnv(t, defaultConfig())

	up := env.upload(t, "photo.png", "image/png", []byte("png"), map[string]string{"tags": ""})
	require.Equal(t, http.StatusCreated, up.Code)

	var created struct {
		File UploadedFileResponse `json:"file"`
	}
	decode(t, up, &created)

	w := env.do(http.MethodGet, "/api/files/"+created.File.ID)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool         `json:"success"`
		File    FileResponse `json:"file"`
	}
	decode(t, w, &body)
	assert.True(t, body.Success)
	assert.Equal(t, "photo.png", body.File.OriginalName)
	assert.NotNil(t, body.File.Tags, "tags serialize as [] rather than null")

	var raw map[string]json.RawMessage
	decode(t, w, &raw)
	var fileFields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["file"], &fileFields))
	_, leaked := fileFields["storedName"]
	assert.False(t, leaked, "stored name must not leak to clients")
}

func TestDeleteRemovesRecordAndBytes(t *testing.T) {
	env := newTestEnv(t, defaultConfig())

	up := env.upload(t, "old.pdf", "application/pdf", []byte("stale"), nil)
	require.Equal(t, http.StatusCreated, up.Code)

	var created struct {
		File UploadedFileResponse `json:"file"`
	}
	decode(t, up, &created)

	f, err := env.repo.GetByID(context.Background(), created.File.ID)
	require.NoError(t, err)

	w := env.do(http.MethodDelete, "/api/files/"+created.File.ID)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decode(t, w, &body)
	assert.True(t, body.Success)
	assert.Equal(t, "File deleted successfully", body.Message)

	_, err = env.repo.GetByID(context.Background(), created.File.ID)
	assert.Error(t, err)

	_, err = env.store.Open(context.Background(), f.StoredName)
	assert.Error(t, err, "physical bytes are gone after delete")

	// deleting again reports NOT_FOUND, nothing else changes
	w = env.do(http.MethodDelete, "/api/files/"+created.File.ID)
	assertErrorEnvelope(t, w, http.StatusNotFound, "NOT_FOUND")
}

func TestDeleteUnknownID(t *testing.T) {
	env := newTestEnv(t, defaultConfig())

	w := env.do(http.MethodDelete, "/api/files/missing")
	assertErrorEnvelope(t, w, http.StatusNotFound, "NOT_FOUND")
}

func TestStats(t *testing.T) {
	env := newTestEnv(t, defaultConfig())

	require.Equal(t, http.StatusCreated, env.upload(t, "a.pdf", "application/pdf", bytes.Repeat([]byte("a"), 100), nil).Code)
	require.Equal(t, http.StatusCreated, env.upload(t, "b.pdf", "application/pdf", bytes.Repeat([]byte("b"), 300), nil).Code)
	require.Equal(t, http.StatusCreated, env.upload(t, "c.png", "image/png", bytes.Repeat([]byte("c"), 50), nil).Code)

	w := env.do(http.MethodGet, "/api/files/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool          `json:"success"`
		Stats   StatsResponse `json:"stats"`
	}
	decode(t, w, &body)
	assert.True(t, body.Success)
	assert.Equal(t, int64(3), body.Stats.TotalFiles)
	assert.Equal(t, int64(450), body.Stats.TotalSize)
	assert.InDelta(t, 150.0, body.Stats.AvgSize, 0.01)
	require.Len(t, body.Stats.FilesByType, 2)
	assert.Equal(t, "application/pdf", body.Stats.FilesByType[0].MimeType)
	assert.Equal(t, int64(2), body.Stats.FilesByType[0].Count)
}

func TestStatsRouteNotShadowedByID(t *testing.T) {
	env := newTestEnv(t, defaultConfig())

	// "/files/stats" must hit the stats handler, not GET /files/:id
	w := env.do(http.MethodGet, "/api/files/stats")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "totalFiles")
}
