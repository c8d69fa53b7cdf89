package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDoer struct {
	mu      sync.Mutex
	calls   int
	err     error
	block   chan struct{} // when set, Upload waits until closed
	started chan struct{} // closed once Upload is entered
}

func (f *fakeDoer) Upload(_ context.Context, in *UploadInput) (*UploadedFile, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.started != nil {
		close(f.started)
		f.started = nil
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}

	// drive the progress callback like the real client would
	if in.Progress != nil {
		in.Progress(in.Size / 2)
		in.Progress(in.Size)
	}
	return &UploadedFile{ID: "file-1", OriginalName: in.FileName, Size: in.Size}, nil
}

func (f *fakeDoer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testConfig() UploaderConfig {
	return UploaderConfig{
		MaxFileSize:  10 * 1000 * 1000,
		AllowedTypes: []string{"application/pdf", "image/png"},
	}
}

func pdfInput(size int64) *UploadInput {
	return &UploadInput{
		FileName:    "doc.pdf",
		ContentType: "application/pdf",
		Content:     strings.NewReader("x"),
		Size:        size,
	}
}

func TestUploaderLifecycle(t *testing.T) {
	doer := &fakeDoer{}
	u := NewUploader(doer, testConfig())
	require.Equal(t, StateIdle, u.State())

	uploaded, err := u.Upload(context.Background(), pdfInput(1000))
	require.NoError(t, err)
	assert.Equal(t, "file-1", uploaded.ID)
	assert.Equal(t, StateSucceeded, u.State())
	assert.Equal(t, 100, u.Progress())
	assert.Equal(t, uploaded, u.Result())

	require.NoError(t, u.Reset())
	assert.Equal(t, StateIdle, u.State())
	assert.Equal(t, 0, u.Progress())
	assert.Nil(t, u.Result())
}

func TestUploaderRejectsOversizeLocally(t *testing.T) {
	doer := &fakeDoer{}
	u := NewUploader(doer, testConfig())

	_, err := u.Upload(context.Background(), pdfInput(15*1000*1000))
	require.Error(t, err)

	assert.Equal(t, StateFailed, u.State())
	assert.Equal(t, 0, doer.callCount(), "local validation must not touch the network")

	reason := u.FailureReason()
	assert.Contains(t, reason, "15 MB")
	assert.Contains(t, reason, "10 MB")
}

func TestUploaderRejectsDisallowedTypeLocally(t *testing.T) {
	doer := &fakeDoer{}
	u := NewUploader(doer, testConfig())

	_, err := u.Upload(context.Background(), &UploadInput{
		FileName:    "virus.exe",
		ContentType: "application/x-msdownload",
		Content:     strings.NewReader("MZ"),
		Size:        10,
	})
	require.Error(t, err)
	assert.Equal(t, StateFailed, u.State())
	assert.Equal(t, 0, doer.callCount())
	assert.Contains(t, u.FailureReason(), "not allowed")
}

func TestUploaderRequiresResetAfterTerminalState(t *testing.T) {
	doer := &fakeDoer{}
	u := NewUploader(doer, testConfig())

	_, err := u.Upload(context.Background(), pdfInput(100))
	require.NoError(t, err)

	_, err = u.Upload(context.Background(), pdfInput(100))
	assert.ErrorIs(t, err, ErrNotIdle)

	require.NoError(t, u.Reset())
	_, err = u.Upload(context.Background(), pdfInput(100))
	assert.NoError(t, err)
}

func TestUploaderRejectsConcurrentUploads(t *testing.T) {
	doer := &fakeDoer{
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	started := doer.started
	u := NewUploader(doer, testConfig())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = u.Upload(context.Background(), pdfInput(100))
	}()

	<-started
	assert.Equal(t, StateUploading, u.State())

	_, err := u.Upload(context.Background(), pdfInput(100))
	assert.ErrorIs(t, err, ErrUploadInProgress)

	assert.ErrorIs(t, u.Reset(), ErrUploadInProgress)

	close(doer.block)
	<-done
	assert.Equal(t, StateSucceeded, u.State())
}

func TestUploaderFailureCarriesServerError(t *testing.T) {
	doer := &fakeDoer{err: &APIError{Status: 400, Code: "FILE_TOO_LARGE", Message: "File size exceeds limit"}}
	u := NewUploader(doer, testConfig())

	_, err := u.Upload(context.Background(), pdfInput(100))
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "FILE_TOO_LARGE", apiErr.Code)
	assert.Equal(t, StateFailed, u.State())
}
