package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/inkpress/blog-api/internal/core/ports"
)

type stubViewDedup struct {
	seen map[string]bool
}

func newStubViewDedup() *stubViewDedup {
	return &stubViewDedup{seen: make(map[string]bool)}
}

func (d *stubViewDedup) IsDuplicate(_ context.Context, postID, viewerHash string) (bool, error) {
	return d.seen[postID+":"+viewerHash], nil
}

func (d *stubViewDedup) Mark(_ context.Context, postID, viewerHash string) error {
	d.seen[postID+":"+viewerHash] = true
	return nil
}

func TestViewService_CountsOncePerViewer(t *testing.T) {
	repo := newStubPostRepo()
	postSvc := newTestPostService(repo, nil)
	post := createPost(t, postSvc, "Popular Post", "published")

	svc := NewViewService(repo, newStubViewDedup(), zerolog.Nop())

	view := ports.PostViewInput{PostID: post.ID, ViewerHash: "viewer-a"}
	for i := 0; i < 3; i++ {
		if err := svc.Process(context.Background(), view); err != nil {
			t.Fatalf("process failed: %v", err)
		}
	}
	if err := svc.Process(context.Background(), ports.PostViewInput{PostID: post.ID, ViewerHash: "viewer-b"}); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	got, _ := repo.FindByID(context.Background(), post.ID)
	if got.ViewCount != 2 {
		t.Fatalf("expected 2 views, got %d", got.ViewCount)
	}
}
