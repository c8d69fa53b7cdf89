package biz

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPostRepo struct {
	mu    sync.Mutex
	posts map[string]*Post
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: make(map[string]*Post)}
}

func (r *memPostRepo) Create(_ context.Context, p *Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.posts[p.ID] = &cp
	return nil
}

func (r *memPostRepo) GetByID(_ context.Context, id string) (*Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPostRepo) GetBySlug(_ context.Context, slug string) (*Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrPostNotFound
}

func (r *memPostRepo) List(_ context.Context, req *ListPostsRequest) ([]*Post, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*Post
	for _, p := range r.posts {
		if !req.IncludeDrafts && !p.Published {
			continue
		}
		cp := *p
		items = append(items, &cp)
	}
	return items, int64(len(items)), nil
}

func (r *memPostRepo) Update(_ context.Context, p *Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[p.ID]; !ok {
		return ErrPostNotFound
	}
	cp := *p
	r.posts[p.ID] = &cp
	return nil
}

func (r *memPostRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func TestCreateDraftHasNoPublishTime(t *testing.T) {
	uc := NewPostUseCase(newMemPostRepo())

	p, err := uc.Create(context.Background(), &CreatePostRequest{Title: "Draft post"})
	require.NoError(t, err)
	assert.False(t, p.Published)
	assert.True(t, p.PublishedAt.IsZero())
}

func TestPublishingStampsTimeOnce(t *testing.T) {
	uc := NewPostUseCase(newMemPostRepo())

	p, err := uc.Create(context.Background(), &CreatePostRequest{Title: "News"})
	require.NoError(t, err)

	yes := true
	published, err := uc.Update(context.Background(), p.ID, &UpdatePostRequest{Published: &yes})
	require.NoError(t, err)
	require.False(t, published.PublishedAt.IsZero())
	firstStamp := published.PublishedAt

	// re-publishing an already published post keeps the original stamp
	again, err := uc.Update(context.Background(), p.ID, &UpdatePostRequest{Published: &yes})
	require.NoError(t, err)
	assert.Equal(t, firstStamp, again.PublishedAt)
}

func TestCreatePostRequiresTitle(t *testing.T) {
	uc := NewPostUseCase(newMemPostRepo())

	_, err := uc.Create(context.Background(), &CreatePostRequest{Title: ""})
	assert.ErrorIs(t, err, ErrPostTitleRequired)
}

func TestDeletePostIdempotence(t *testing.T) {
	uc := NewPostUseCase(newMemPostRepo())

	p, err := uc.Create(context.Background(), &CreatePostRequest{Title: "Ephemeral"})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(context.Background(), p.ID))
	assert.ErrorIs(t, uc.Delete(context.Background(), p.ID), ErrPostNotFound)
}
