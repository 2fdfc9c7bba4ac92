package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkpress/blog-api/internal/core/domain"
	"github.com/inkpress/blog-api/internal/core/ports"
)

type stubCommentRepo struct {
	comments map[string]*domain.Comment
	order    []string
	nextID   int
}

func newStubCommentRepo() *stubCommentRepo {
	return &stubCommentRepo{comments: make(map[string]*domain.Comment)}
}

func cloneComment(c *domain.Comment) *domain.Comment {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

func (r *stubCommentRepo) Create(_ context.Context, c *domain.Comment) error {
	r.nextID++
	c.ID = fmt.Sprintf("comment-%d", r.nextID)
	r.comments[c.ID] = cloneComment(c)
	r.order = append(r.order, c.ID)
	return nil
}

func (r *stubCommentRepo) FindByID(_ context.Context, id string) (*domain.Comment, error) {
	if c, ok := r.comments[id]; ok {
		return cloneComment(c), nil
	}
	return nil, domain.ErrCommentNotFound
}

func (r *stubCommentRepo) ListByPost(_ context.Context, postID string) ([]*domain.Comment, error) {
	var out []*domain.Comment
	for _, id := range r.order {
		c, ok := r.comments[id]
		if ok && c.PostID == postID {
			out = append(out, cloneComment(c))
		}
	}
	return out, nil
}

func (r *stubCommentRepo) UpdateContent(_ context.Context, id, content string) (*domain.Comment, error) {
	c, ok := r.comments[id]
	if !ok {
		return nil, domain.ErrCommentNotFound
	}
	c.Content = content
	c.UpdatedAt = time.Now().UTC()
	return cloneComment(c), nil
}

func (r *stubCommentRepo) Tombstone(_ context.Context, id string) error {
	c, ok := r.comments[id]
	if !ok {
		return domain.ErrCommentNotFound
	}
	c.Deleted = true
	c.Content = ""
	return nil
}

func (r *stubCommentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.comments[id]; !ok {
		return domain.ErrCommentNotFound
	}
	delete(r.comments, id)
	return nil
}

var commenter = domain.Author{ID: "commenter-1", Username: "bob"}

func newCommentFixture(t *testing.T) (*CommentService, *stubCommentRepo, *domain.Post) {
	t.Helper()
	commentRepo := newStubCommentRepo()
	postRepo := newStubPostRepo()
	postSvc := newTestPostService(postRepo, nil)
	post := createPost(t, postSvc, "Commented Post", "published")
	svc := NewCommentService(commentRepo, postRepo, zerolog.Nop())
	return svc, commentRepo, post
}

func comment(t *testing.T, svc *CommentService, postID, parentID, content string) *domain.Comment {
	t.Helper()
	c, err := svc.Create(context.Background(), ports.CreateCommentInput{
		PostID:   postID,
		ParentID: parentID,
		Content:  content,
		Author:   commenter,
	})
	if err != nil {
		t.Fatalf("create comment failed: %v", err)
	}
	return c
}

func TestCommentService_Create_OnPublishedPost(t *testing.T) {
	svc, _, post := newCommentFixture(t)

	c := comment(t, svc, post.ID, "", "first!")
	if c.ID == "" || c.PostID != post.ID {
		t.Fatalf("unexpected comment: %+v", c)
	}
}

func TestCommentService_Create_DraftRejected(t *testing.T) {
	commentRepo := newStubCommentRepo()
	postRepo := newStubPostRepo()
	postSvc := newTestPostService(postRepo, nil)
	draft := createPost(t, postSvc, "Hidden Draft", "draft")
	svc := NewCommentService(commentRepo, postRepo, zerolog.Nop())

	_, err := svc.Create(context.Background(), ports.CreateCommentInput{
		PostID:  draft.ID,
		Content: "sneaky",
		Author:  commenter,
	})
	if !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestCommentService_Create_DeepNestingFlattened(t *testing.T) {
	svc, _, post := newCommentFixture(t)

	top := comment(t, svc, post.ID, "", "top level")
	reply := comment(t, svc, post.ID, top.ID, "a reply")

	// Replying to a reply attaches to the top-level parent instead.
	deep := comment(t, svc, post.ID, reply.ID, "reply to a reply")
	if deep.ParentID != top.ID {
		t.Fatalf("expected parent %s, got %s", top.ID, deep.ParentID)
	}
}

func TestCommentService_Create_ParentOnOtherPostRejected(t *testing.T) {
	commentRepo := newStubCommentRepo()
	postRepo := newStubPostRepo()
	postSvc := newTestPostService(postRepo, nil)
	first := createPost(t, postSvc, "First Post", "published")
	other := createPost(t, postSvc, "Other Post", "published")
	svc := NewCommentService(commentRepo, postRepo, zerolog.Nop())

	foreign := comment(t, svc, first.ID, "", "on the first post")

	_, err := svc.Create(context.Background(), ports.CreateCommentInput{
		PostID:   other.ID,
		ParentID: foreign.ID,
		Content:  "cross-post reply",
		Author:   commenter,
	})
	if !errors.Is(err, domain.ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound for cross-post parent, got %v", err)
	}
}

func TestCommentService_ListByPost_Threads(t *testing.T) {
	svc, _, post := newCommentFixture(t)

	first := comment(t, svc, post.ID, "", "first thread")
	second := comment(t, svc, post.ID, "", "second thread")
	comment(t, svc, post.ID, first.ID, "reply one")
	comment(t, svc, post.ID, first.ID, "reply two")

	threads, err := svc.ListByPost(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(threads) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(threads))
	}
	if threads[0].Comment.ID != first.ID || threads[1].Comment.ID != second.ID {
		t.Fatal("threads out of creation order")
	}
	if len(threads[0].Replies) != 2 {
		t.Fatalf("expected 2 replies on first thread, got %d", len(threads[0].Replies))
	}
	if len(threads[1].Replies) != 0 {
		t.Fatalf("expected no replies on second thread, got %d", len(threads[1].Replies))
	}
}

func TestCommentService_Update(t *testing.T) {
	svc, _, post := newCommentFixture(t)

	c := comment(t, svc, post.ID, "", "orignal")

	if _, err := svc.Update(context.Background(), c.ID, "edited", "stranger", domain.RoleUser); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	updated, err := svc.Update(context.Background(), c.ID, "fixed typo", commenter.ID, domain.RoleUser)
	if err != nil {
		t.Fatalf("author update failed: %v", err)
	}
	if updated.Content != "fixed typo" {
		t.Fatalf("content not updated: %q", updated.Content)
	}
}

func TestCommentService_Update_TombstonedImmutable(t *testing.T) {
	svc, repo, post := newCommentFixture(t)

	parent := comment(t, svc, post.ID, "", "parent")
	comment(t, svc, post.ID, parent.ID, "reply keeps the thread alive")

	if err := svc.Delete(context.Background(), parent.ID, commenter.ID, domain.RoleUser); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if got, _ := repo.FindByID(context.Background(), parent.ID); got == nil || !got.Deleted {
		t.Fatal("expected parent to be tombstoned")
	}

	if _, err := svc.Update(context.Background(), parent.ID, "resurrect", commenter.ID, domain.RoleUser); !errors.Is(err, domain.ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound for tombstoned comment, got %v", err)
	}
}

func TestCommentService_Delete_LeafRemovedOutright(t *testing.T) {
	svc, repo, post := newCommentFixture(t)

	parent := comment(t, svc, post.ID, "", "parent")
	reply := comment(t, svc, post.ID, parent.ID, "leaf reply")

	if err := svc.Delete(context.Background(), reply.ID, commenter.ID, domain.RoleUser); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.FindByID(context.Background(), reply.ID); !errors.Is(err, domain.ErrCommentNotFound) {
		t.Fatal("leaf comment should be gone")
	}

	// The parent now has no replies, so deleting it removes it too.
	if err := svc.Delete(context.Background(), parent.ID, commenter.ID, domain.RoleUser); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.FindByID(context.Background(), parent.ID); !errors.Is(err, domain.ErrCommentNotFound) {
		t.Fatal("childless parent should be removed, not tombstoned")
	}
}

func TestCommentService_Delete_OwnershipEnforced(t *testing.T) {
	svc, _, post := newCommentFixture(t)

	c := comment(t, svc, post.ID, "", "mine")
	if err := svc.Delete(context.Background(), c.ID, "stranger", domain.RoleUser); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	// Admins may remove any comment.
	if err := svc.Delete(context.Background(), c.ID, "admin-1", domain.RoleAdmin); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
}
