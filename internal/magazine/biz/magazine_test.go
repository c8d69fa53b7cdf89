package biz

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	filebiz "github.com/rwa-portal/rwa-backend/internal/file/biz"
)

type memFileRepo struct {
	mu    sync.Mutex
	files map[string]*filebiz.File
}

func (r *memFileRepo) Create(_ context.Context, f *filebiz.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *f
	r.files[f.ID] = &cp
	return nil
}

func (r *memFileRepo) GetByID(_ context.Context, id string) (*filebiz.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return nil, filebiz.ErrFileNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *memFileRepo) List(_ context.Context, _ *filebiz.ListFilesRequest) ([]*filebiz.File, int64, error) {
	return nil, 0, nil
}

func (r *memFileRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[id]; !ok {
		return filebiz.ErrFileNotFound
	}
	delete(r.files, id)
	return nil
}

func (r *memFileRepo) IncrementDownloads(_ context.Context, _ string) error { return nil }

func (r *memFileRepo) Stats(_ context.Context) (*filebiz.Stats, error) {
	return &filebiz.Stats{}, nil
}

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (s *memStore) Save(_ context.Context, key string, content io.Reader, _ string) (int64, string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return 0, "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return int64(len(data)), "/mem/" + key, nil
}

func (s *memStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return fs.ErrNotExist
	}
	delete(s.objects, key)
	return nil
}

type memMagazineRepo struct {
	mu        sync.Mutex
	magazines map[string]*Magazine
	failNext  bool
}

func newMemMagazineRepo() *memMagazineRepo {
	return &memMagazineRepo{magazines: make(map[string]*Magazine)}
}

func (r *memMagazineRepo) Create(_ context.Context, m *Magazine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return errors.New("db down")
	}
	cp := *m
	r.magazines[m.ID] = &cp
	return nil
}

func (r *memMagazineRepo) GetByID(_ context.Context, id string) (*Magazine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.magazines[id]
	if !ok {
		return nil, ErrMagazineNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *memMagazineRepo) List(_ context.Context, req *ListMagazinesRequest) ([]*Magazine, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*Magazine
	for _, m := range r.magazines {
		cp := *m
		items = append(items, &cp)
	}
	return items, int64(len(r.magazines)), nil
}

func (r *memMagazineRepo) Update(_ context.Context, m *Magazine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.magazines[m.ID]; !ok {
		return ErrMagazineNotFound
	}
	cp := *m
	r.magazines[m.ID] = &cp
	return nil
}

func (r *memMagazineRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.magazines[id]; !ok {
		return ErrMagazineNotFound
	}
	delete(r.magazines, id)
	return nil
}

type fakeRenderer struct {
	fail bool
}

func (f *fakeRenderer) Render(_ []byte) ([]byte, error) {
	if f.fail {
		return nil, errors.New("broken PDF")
	}
	return []byte("PNG"), nil
}

type env struct {
	uc       *MagazineUseCase
	repo     *memMagazineRepo
	fileRepo *memFileRepo
	store    *memStore
	renderer *fakeRenderer
}

func newEnv() *env {
	fileRepo := &memFileRepo{files: make(map[string]*filebiz.File)}
	store := newMemStore()
	fileUC := filebiz.NewFileUseCase(fileRepo, store, filebiz.Config{
		MaxFileSize:  10 << 20,
		AllowedTypes: []string{"application/pdf"},
	}, nil)

	repo := newMemMagazineRepo()
	renderer := &fakeRenderer{}
	return &env{
		uc:       NewMagazineUseCase(repo, fileUC, renderer, store, nil),
		repo:     repo,
		fileRepo: fileRepo,
		store:    store,
		renderer: renderer,
	}
}

func TestCreateMagazine(t *testing.T) {
	e := newEnv()

	m, err := e.uc.Create(context.Background(), &CreateMagazineRequest{
		Title:        "Spring 2026",
		Summary:      "Quarterly issue",
		OriginalName: "spring-2026.pdf",
		Content:      []byte("%PDF-1.4"),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, m.ID)
	assert.NotEmpty(t, m.FileID)
	assert.Contains(t, m.FileURL, "/download")
	assert.Contains(t, m.CoverURL, "/uploads/")
	assert.Contains(t, m.CoverURL, "-cover.png")
	assert.False(t, m.IssueDate.IsZero(), "missing issue date defaults to now")

	// PDF and cover both landed in the content store
	_, err = e.fileRepo.GetByID(context.Background(), m.FileID)
	assert.NoError(t, err)
	assert.Len(t, e.store.objects, 2)
}

func TestCreateMagazineCoverFailureIsNotFatal(t *testing.T) {
	e := newEnv()
	e.renderer.fail = true

	m, err := e.uc.Create(context.Background(), &CreateMagazineRequest{
		Title:        "Broken cover",
		OriginalName: "x.pdf",
		Content:      []byte("%PDF-1.4"),
	})
	require.NoError(t, err)
	assert.Empty(t, m.CoverURL)
}

func TestCreateMagazineRequiresTitle(t *testing.T) {
	e := newEnv()

	_, err := e.uc.Create(context.Background(), &CreateMagazineRequest{
		Title:   "   ",
		Content: []byte("%PDF-1.4"),
	})
	assert.ErrorIs(t, err, ErrTitleRequired)
	assert.Empty(t, e.store.objects, "no bytes staged for an invalid request")
}

func TestCreateMagazineRollsBackFileOnPersistFailure(t *testing.T) {
	e := newEnv()
	e.repo.failNext = true

	_, err := e.uc.Create(context.Background(), &CreateMagazineRequest{
		Title:        "Doomed",
		OriginalName: "doomed.pdf",
		Content:      []byte("%PDF-1.4"),
	})
	assert.ErrorIs(t, err, ErrPersistFailed)

	// the staged PDF was rolled back; only the orphaned cover may remain
	e.fileRepo.mu.Lock()
	defer e.fileRepo.mu.Unlock()
	assert.Empty(t, e.fileRepo.files, "file record must not outlive the failed magazine insert")
}

func TestUpdateMagazine(t *testing.T) {
	e := newEnv()

	m, err := e.uc.Create(context.Background(), &CreateMagazineRequest{
		Title:        "Old title",
		OriginalName: "m.pdf",
		Content:      []byte("%PDF-1.4"),
	})
	require.NoError(t, err)

	newTitle := "New title"
	updated, err := e.uc.Update(context.Background(), m.ID, &UpdateMagazineRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, m.FileURL, updated.FileURL, "the PDF is immutable")

	empty := " "
	_, err = e.uc.Update(context.Background(), m.ID, &UpdateMagazineRequest{Title: &empty})
	assert.ErrorIs(t, err, ErrTitleRequired)
}

func TestDeleteMagazineRemovesFileAndCover(t *testing.T) {
	e := newEnv()

	m, err := e.uc.Create(context.Background(), &CreateMagazineRequest{
		Title:        "Gone soon",
		OriginalName: "gone.pdf",
		Content:      []byte("%PDF-1.4"),
	})
	require.NoError(t, err)
	require.Len(t, e.store.objects, 2)

	require.NoError(t, e.uc.Delete(context.Background(), m.ID))

	assert.Empty(t, e.store.objects, "PDF and cover are both removed")
	_, err = e.uc.Get(context.Background(), m.ID)
	assert.ErrorIs(t, err, ErrMagazineNotFound)

	err = e.uc.Delete(context.Background(), m.ID)
	assert.ErrorIs(t, err, ErrMagazineNotFound)
}
