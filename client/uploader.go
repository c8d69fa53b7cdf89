package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"
)

// UploadState is the lifecycle phase of an Uploader.
type UploadState int

const (
	StateIdle UploadState = iota
	StateValidating
	StateUploading
	StateSucceeded
	StateFailed
)

func (s UploadState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateUploading:
		return "uploading"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrUploadInProgress is returned when an upload is started while another
// one has not finished.
var ErrUploadInProgress = fmt.Errorf("an upload is already in progress")

// ErrNotIdle is returned when an upload is started before Reset cleared a
// terminal state.
var ErrNotIdle = fmt.Errorf("uploader must be reset before the next upload")

// uploadDoer is the slice of Client the Uploader needs.
type uploadDoer interface {
	Upload(ctx context.Context, in *UploadInput) (*UploadedFile, error)
}

// Uploader drives a single upload at a time through the lifecycle
// Idle → Validating → Uploading(0..100) → Succeeded | Failed. Validation
// failures never touch the network. A terminal state must be cleared with
// Reset before the next upload.
type Uploader struct {
	client  uploadDoer
	maxSize int64
	allowed map[string]struct{}

	mu       sync.Mutex
	state    UploadState
	progress int // percent, only meaningful while Uploading
	reason   string
	result   *UploadedFile
}

// UploaderConfig mirrors the server's upload limits so misconfigured files
// fail locally, before any bytes travel.
type UploaderConfig struct {
	MaxFileSize  int64
	AllowedTypes []string
}

func NewUploader(client uploadDoer, cfg UploaderConfig) *Uploader {
	allowed := make(map[string]struct{}, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowed[t] = struct{}{}
	}
	return &Uploader{
		client:  client,
		maxSize: cfg.MaxFileSize,
		allowed: allowed,
		state:   StateIdle,
	}
}

// State returns the current phase.
func (u *Uploader) State() UploadState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Progress returns the percentage sent, 0..100.
func (u *Uploader) Progress() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.progress
}

// FailureReason returns the human-readable reason after a failure.
func (u *Uploader) FailureReason() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.reason
}

// Result returns the uploaded file after a success.
func (u *Uploader) Result() *UploadedFile {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.result
}

// Reset returns a terminal uploader to Idle. Resetting mid-upload is not
// allowed.
func (u *Uploader) Reset() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state == StateValidating || u.state == StateUploading {
		return ErrUploadInProgress
	}
	u.state = StateIdle
	u.progress = 0
	u.reason = ""
	u.result = nil
	return nil
}

// Upload runs one upload to completion. It blocks until the transfer
// finished or failed; progress is observable from other goroutines.
func (u *Uploader) Upload(ctx context.Context, in *UploadInput) (*UploadedFile, error) {
	u.mu.Lock()
	switch u.state {
	case StateValidating, StateUploading:
		u.mu.Unlock()
		return nil, ErrUploadInProgress
	case StateSucceeded, StateFailed:
		u.mu.Unlock()
		return nil, ErrNotIdle
	}
	u.state = StateValidating
	u.mu.Unlock()

	if reason := u.validate(in); reason != "" {
		u.fail(reason)
		return nil, &APIError{Code: "INVALID_FILE", Message: reason}
	}

	u.mu.Lock()
	u.state = StateUploading
	u.progress = 0
	u.mu.Unlock()

	// chain our percentage bookkeeping in front of the caller's callback
	callerProgress := in.Progress
	total := in.Size
	in.Progress = func(sent int64) {
		u.mu.Lock()
		if total > 0 {
			pct := int(sent * 100 / total)
			if pct > 100 {
				pct = 100
			}
			u.progress = pct
		}
		u.mu.Unlock()
		if callerProgress != nil {
			callerProgress(sent)
		}
	}

	uploaded, err := u.client.Upload(ctx, in)
	if err != nil {
		u.fail(err.Error())
		return nil, err
	}

	u.mu.Lock()
	u.state = StateSucceeded
	u.progress = 100
	u.result = uploaded
	u.mu.Unlock()
	return uploaded, nil
}

// validate returns an empty string when the input passes local checks.
func (u *Uploader) validate(in *UploadInput) string {
	if in == nil || in.Content == nil {
		return "no file selected"
	}
	if _, ok := u.allowed[in.ContentType]; !ok {
		return fmt.Sprintf("file type %q is not allowed", in.ContentType)
	}
	if u.maxSize > 0 && in.Size > u.maxSize {
		return fmt.Sprintf("file is %s, the limit is %s",
			humanize.Bytes(uint64(in.Size)), humanize.Bytes(uint64(u.maxSize)))
	}
	return ""
}

func (u *Uploader) fail(reason string) {
	u.mu.Lock()
	u.state = StateFailed
	u.reason = reason
	u.mu.Unlock()
}
