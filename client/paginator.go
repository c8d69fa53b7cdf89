package client

import (
	"context"
	"sync"
)

// ListFunc fetches one page of records. *Client.List satisfies it via a
// small adapter in NewPaginator.
type ListFunc func(ctx context.Context, page, pageSize int) (*FileList, error)

// Paginator tracks the visible page of the file list. Out-of-range moves
// are no-ops; every effective state change triggers exactly one fetch.
// Responses are applied newest-request-wins: a slow response for an older
// request is discarded, so the visible page never jumps backwards.
type Paginator struct {
	fetch ListFunc

	mu         sync.Mutex
	seq        uint64 // id of the most recent request
	page       int
	pageSize   int
	totalItems int64
	totalPages int64
	items      []File
	loaded     bool
}

func NewPaginator(c *Client, pageSize int) *Paginator {
	return NewPaginatorFunc(func(ctx context.Context, page, size int) (*FileList, error) {
		return c.List(ctx, &ListOptions{Page: page, Limit: size})
	}, pageSize)
}

func NewPaginatorFunc(fetch ListFunc, pageSize int) *Paginator {
	if pageSize < 1 {
		pageSize = 12
	}
	return &Paginator{
		fetch:    fetch,
		page:     1,
		pageSize: pageSize,
	}
}

// Page returns the current page number, 1-based.
func (p *Paginator) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// PageSize returns the current page size.
func (p *Paginator) PageSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pageSize
}

// TotalPages returns the page count from the last applied response.
func (p *Paginator) TotalPages() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalPages
}

// TotalItems returns the record count from the last applied response.
func (p *Paginator) TotalItems() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalItems
}

// Items returns the records of the current page.
func (p *Paginator) Items() []File {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]File, len(p.items))
	copy(out, p.items)
	return out
}

// Refresh re-fetches the current page.
func (p *Paginator) Refresh(ctx context.Context) error {
	p.mu.Lock()
	page, size, token := p.page, p.pageSize, p.nextSeqLocked()
	p.mu.Unlock()
	return p.load(ctx, token, page, size, page, size)
}

// GoToPage moves to the given page. Out-of-range targets (once totals are
// known) are no-ops.
func (p *Paginator) GoToPage(ctx context.Context, page int) error {
	p.mu.Lock()
	if page < 1 || (p.loaded && int64(page) > p.totalPages) || page == p.page {
		p.mu.Unlock()
		return nil
	}
	prev := p.page
	p.page = page
	size, token := p.pageSize, p.nextSeqLocked()
	p.mu.Unlock()
	return p.load(ctx, token, page, size, prev, size)
}

// Next advances one page; a no-op on the last page.
func (p *Paginator) Next(ctx context.Context) error {
	p.mu.Lock()
	if p.loaded && int64(p.page) >= p.totalPages {
		p.mu.Unlock()
		return nil
	}
	prev := p.page
	p.page++
	page, size, token := p.page, p.pageSize, p.nextSeqLocked()
	p.mu.Unlock()
	return p.load(ctx, token, page, size, prev, size)
}

// Prev goes back one page; a no-op on the first page.
func (p *Paginator) Prev(ctx context.Context) error {
	p.mu.Lock()
	if p.page <= 1 {
		p.mu.Unlock()
		return nil
	}
	prev := p.page
	p.page--
	page, size, token := p.page, p.pageSize, p.nextSeqLocked()
	p.mu.Unlock()
	return p.load(ctx, token, page, size, prev, size)
}

// SetPageSize changes the page size and resets to page 1.
func (p *Paginator) SetPageSize(ctx context.Context, size int) error {
	if size < 1 {
		return nil
	}
	p.mu.Lock()
	if size == p.pageSize {
		p.mu.Unlock()
		return nil
	}
	prevPage, prevSize := p.page, p.pageSize
	p.pageSize = size
	p.page = 1
	token := p.nextSeqLocked()
	p.mu.Unlock()
	return p.load(ctx, token, 1, size, prevPage, prevSize)
}

func (p *Paginator) nextSeqLocked() uint64 {
	p.seq++
	return p.seq
}

func (p *Paginator) load(ctx context.Context, token uint64, page, size, prevPage, prevSize int) error {
	list, err := p.fetch(ctx, page, size)

	p.mu.Lock()
	defer p.mu.Unlock()

	if token != p.seq {
		// a newer request superseded this one
		return nil
	}
	if err != nil {
		// the move never happened; keep the page number with the items
		p.page = prevPage
		p.pageSize = prevSize
		return err
	}

	p.items = list.Data
	p.totalItems = list.TotalItems
	p.totalPages = list.TotalPages
	p.loaded = true

	// the server clamps; mirror its view so boundaries stay accurate
	if list.Page > 0 {
		p.page = list.Page
	}
	if list.Limit > 0 {
		p.pageSize = list.Limit
	}
	return nil
}
