// Package client is an importable Go client for the portal's file API. It
// mirrors the REST contract: the error envelope surfaces as *APIError, the
// list endpoint as FileList.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIError is the decoded error envelope plus the HTTP status it came with.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d [%s]: %s", e.Status, e.Code, e.Message)
}

// UploadedFile is the projection returned from a successful upload.
type UploadedFile struct {
	ID           string `json:"_id"`
	OriginalName string `json:"originalName"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimeType"`
}

// File is the full public record.
type File struct {
	ID           string    `json:"_id"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	UploadedAt   time.Time `json:"uploadedAt"`
	Downloads    int64     `json:"downloads"`
	Description  string    `json:"description"`
	Tags         []string  `json:"tags"`
}

// FileList is one page of records.
type FileList struct {
	Data       []File `json:"data"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalItems int64  `json:"totalItems"`
	TotalPages int64  `json:"totalPages"`
}

// TypeStat is one MIME-type slice of the stats breakdown.
type TypeStat struct {
	MimeType  string `json:"_id"`
	Count     int64  `json:"count"`
	TotalSize int64  `json:"totalSize"`
}

// Stats aggregates all records.
type Stats struct {
	TotalFiles     int64      `json:"totalFiles"`
	TotalSize      int64      `json:"totalSize"`
	AvgSize        float64    `json:"avgSize"`
	TotalDownloads int64      `json:"totalDownloads"`
	FilesByType    []TypeStat `json:"filesByType"`
}

// UploadInput describes one upload. Size is advisory and only drives the
// progress callback; the server measures the stream itself.
type UploadInput struct {
	FileName    string
	ContentType string
	Content     io.Reader
	Size        int64
	Description string
	Tags        []string
	// Progress, when set, is invoked with the number of bytes sent so far.
	Progress func(sent int64)
}

// ListOptions filters and pages the list endpoint. Zero values are omitted.
type ListOptions struct {
	Page     int
	Limit    int
	MimeType string
	Search   string
}

// Client talks to the portal API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// countingReader reports cumulative bytes read to a callback.
type countingReader struct {
	r        io.Reader
	sent     int64
	progress func(sent int64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.sent += int64(n)
		if c.progress != nil {
			c.progress(c.sent)
		}
	}
	return n, err
}

// Upload sends the file as multipart/form-data. The body is streamed
// through a pipe, so arbitrarily large files never live in memory.
func (c *Client) Upload(ctx context.Context, in *UploadInput) (*UploadedFile, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, in.FileName))
		h.Set("Content-Type", in.ContentType)

		part, err := mw.CreatePart(h)
		if err != nil {
			pw.CloseWithError(err)
			return
		}

		src := io.Reader(in.Content)
		if in.Progress != nil {
			src = &countingReader{r: in.Content, progress: in.Progress}
		}
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(err)
			return
		}

		if in.Description != "" {
			if err := mw.WriteField("description", in.Description); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		if len(in.Tags) > 0 {
			if err := mw.WriteField("tags", strings.Join(in.Tags, ",")); err != nil {
				pw.CloseWithError(err)
				return
			}
		}

		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/files", pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		File UploadedFile `json:"file"`
	}
	if err := c.do(req, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out.File, nil
}

// List fetches one page of records.
func (c *Client) List(ctx context.Context, opts *ListOptions) (*FileList, error) {
	if opts == nil {
		opts = &ListOptions{}
	}

	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.MimeType != "" {
		q.Set("mimeType", opts.MimeType)
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}

	target := c.baseURL + "/api/files"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	var out FileList
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches a single record's metadata.
func (c *Client) Get(ctx context.Context, id string) (*File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/files/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		File File `json:"file"`
	}
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out.File, nil
}

// Download opens the record's bytes for streaming. The caller must close
// the reader.
func (c *Client) Download(ctx context.Context, id string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/files/"+url.PathEscape(id)+"/download", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp.Body, nil
}

// Delete removes a record and its bytes.
func (c *Client) Delete(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/files/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return c.do(req, http.StatusOK, nil)
}

// Stats fetches the aggregate statistics.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/files/stats", nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		Stats Stats `json:"stats"`
	}
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out.Stats, nil
}

func (c *Client) do(req *http.Request, wantStatus int, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return decodeError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error != nil {
		envelope.Error.Status = resp.StatusCode
		return envelope.Error
	}
	return &APIError{
		Status:  resp.StatusCode,
		Code:    "SERVER_ERROR",
		Message: http.StatusText(resp.StatusCode),
	}
}
