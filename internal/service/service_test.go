package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gfdmit/blogicum/config"
	"github.com/gfdmit/blogicum/internal/repository"
	"github.com/gfdmit/blogicum/internal/repository/memory"
)

type memoryRepo interface {
	repository.Repository
	AddCategory(repository.Category) repository.Category
	AddLocation(repository.Location) repository.Location
}

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, memoryRepo) {
	t.Helper()
	repo := memory.New()
	svc := New(repo, nil, config.App{PostsPerPage: 10, SessionTTL: 24 * time.Hour})
	svc.now = func() time.Time { return testNow }
	repo.AddCategory(repository.Category{ID: 1, Title: "Travel", Slug: "travel", IsPublished: true})
	repo.AddCategory(repository.Category{ID: 2, Title: "Hidden", Slug: "hidden", IsPublished: false})
	return svc, repo
}

func newUser(t *testing.T, svc *Service, username string) *repository.User {
	t.Helper()
	u, err := svc.Register(context.Background(), username, username+"@example.com", "password123")
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return u
}

func newPost(t *testing.T, svc *Service, authorID int, in PostInput) *repository.Post {
	t.Helper()
	if in.Title == "" {
		in.Title = "title"
	}
	if in.Text == "" {
		in.Text = "text"
	}
	if in.CategoryID == 0 {
		in.CategoryID = 1
	}
	if in.PubDate.IsZero() {
		in.PubDate = testNow.Add(-time.Hour)
	}
	p, err := svc.CreatePost(context.Background(), authorID, in)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

func TestIndexExcludesHiddenPosts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	author := newUser(t, svc, "alice")

	visible := newPost(t, svc, author.ID, PostInput{IsPublished: true})
	newPost(t, svc, author.ID, PostInput{IsPublished: false})
	newPost(t, svc, author.ID, PostInput{IsPublished: true, PubDate: testNow.Add(time.Hour)})
	newPost(t, svc, author.ID, PostInput{IsPublished: true, CategoryID: 2})

	page, err := svc.Index(ctx, 1)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if len(page.Posts) != 1 {
		t.Fatalf("expected 1 visible post, got %d", len(page.Posts))
	}
	if page.Posts[0].ID != visible.ID {
		t.Errorf("wrong post listed: %d", page.Posts[0].ID)
	}
}

func TestIndexPagination(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	author := newUser(t, svc, "alice")

	for i := 0; i < 25; i++ {
		newPost(t, svc, author.ID, PostInput{
			IsPublished: true,
			PubDate:     testNow.Add(-time.Duration(i+1) * time.Minute),
		})
	}

	page, err := svc.Index(ctx, 2)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if page.TotalPages != 3 {
		t.Errorf("total pages = %d, want 3", page.TotalPages)
	}
	if len(page.Posts) != 10 {
		t.Errorf("page size = %d, want 10", len(page.Posts))
	}
	if !page.HasPrev || !page.HasNext {
		t.Errorf("page 2 of 3 should have prev and next")
	}
	// newest first within the page
	if page.Posts[0].PubDate.Before(page.Posts[1].PubDate) {
		t.Errorf("posts not ordered newest first")
	}
}

func TestCategoryUnpublishedSlugIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, _, err := svc.Category(context.Background(), "hidden", 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoryScopesPosts(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	repo.AddCategory(repository.Category{ID: 3, Title: "Food", Slug: "food", IsPublished: true})
	author := newUser(t, svc, "alice")

	inTravel := newPost(t, svc, author.ID, PostInput{IsPublished: true, CategoryID: 1})
	newPost(t, svc, author.ID, PostInput{IsPublished: true, CategoryID: 3})

	category, page, err := svc.Category(ctx, "travel", 1)
	if err != nil {
		t.Fatalf("category: %v", err)
	}
	if category.Slug != "travel" {
		t.Errorf("wrong category: %s", category.Slug)
	}
	if len(page.Posts) != 1 || page.Posts[0].ID != inTravel.ID {
		t.Fatalf("expected only the travel post, got %d posts", len(page.Posts))
	}
}

func TestProfileOwnerSeesDrafts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	author := newUser(t, svc, "alice")
	other := newUser(t, svc, "bob")

	newPost(t, svc, author.ID, PostInput{IsPublished: true})
	newPost(t, svc, author.ID, PostInput{IsPublished: false})
	newPost(t, svc, author.ID, PostInput{IsPublished: true, PubDate: testNow.Add(time.Hour)})
	newPost(t, svc, author.ID, PostInput{IsPublished: true, CategoryID: 2})

	_, own, err := svc.Profile(ctx, "alice", author.ID, 1)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if len(own.Posts) != 4 {
		t.Errorf("owner sees %d posts, want 4", len(own.Posts))
	}

	_, others, err := svc.Profile(ctx, "alice", other.ID, 1)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if len(others.Posts) != 1 {
		t.Errorf("non-owner sees %d posts, want 1", len(others.Posts))
	}

	if _, _, err := svc.Profile(ctx, "nobody", other.ID, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown username should be NotFound, got %v", err)
	}
}

func TestDetailVisibility(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	author := newUser(t, svc, "alice")
	other := newUser(t, svc, "bob")

	draft := newPost(t, svc, author.ID, PostInput{IsPublished: false})

	if _, _, err := svc.Detail(ctx, draft.ID, other.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("non-owner detail of draft should be NotFound, got %v", err)
	}
	if _, _, err := svc.Detail(ctx, draft.ID, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("anonymous detail of draft should be NotFound, got %v", err)
	}
	post, _, err := svc.Detail(ctx, draft.ID, author.ID)
	if err != nil {
		t.Fatalf("author detail: %v", err)
	}
	if post.ID != draft.ID {
		t.Errorf("wrong post returned")
	}
}

func TestDetailIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	author := newUser(t, svc, "alice")
	p := newPost(t, svc, author.ID, PostInput{IsPublished: true})

	first, _, err1 := svc.Detail(ctx, p.ID, 0)
	second, _, err2 := svc.Detail(ctx, p.ID, 0)
	if err1 != nil || err2 != nil {
		t.Fatalf("detail errors: %v, %v", err1, err2)
	}
	if first.ID != second.ID || first.IsPublished != second.IsPublished {
		t.Errorf("consecutive lookups disagree")
	}
}

func TestModifyPostRequiresOwnership(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	author := newUser(t, svc, "alice")
	other := newUser(t, svc, "bob")
	p := newPost(t, svc, author.ID, PostInput{IsPublished: true})

	in := PostInput{Title: "changed", Text: "changed", PubDate: p.PubDate, IsPublished: true, CategoryID: 1}

	if _, err := svc.UpdatePost(ctx, p.ID, other.ID, in); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner update: got %v, want ErrForbidden", err)
	}
	if err := svc.DeletePost(ctx, p.ID, other.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner delete: got %v, want ErrForbidden", err)
	}

	// nothing mutated
	got, _, err := svc.Detail(ctx, p.ID, author.ID)
	if err != nil {
		t.Fatalf("post gone after failed modification: %v", err)
	}
	if got.Title != p.Title {
		t.Errorf("title changed by non-owner")
	}

	if _, err := svc.UpdatePost(ctx, p.ID, author.ID, in); err != nil {
		t.Errorf("owner update failed: %v", err)
	}
	if err := svc.DeletePost(ctx, p.ID, author.ID); err != nil {
		t.Errorf("owner delete failed: %v", err)
	}
}

func TestCommentsInheritPostVisibility(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	author := newUser(t, svc, "alice")
	other := newUser(t, svc, "bob")

	draft := newPost(t, svc, author.ID, PostInput{IsPublished: false})

	if _, err := svc.AddComment(ctx, draft.ID, other.ID, "hi"); !errors.Is(err, ErrNotFound) {
		t.Errorf("comment on invisible post: got %v, want ErrNotFound", err)
	}
	if _, err := svc.AddComment(ctx, draft.ID, author.ID, "note to self"); err != nil {
		t.Errorf("author comment on own draft failed: %v", err)
	}
}

func TestCommentOwnership(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	author := newUser(t, svc, "alice")
	other := newUser(t, svc, "bob")
	p := newPost(t, svc, author.ID, PostInput{IsPublished: true})

	c, err := svc.AddComment(ctx, p.ID, other.ID, "first")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}

	if _, err := svc.UpdateComment(ctx, p.ID, c.ID, author.ID, "edited"); !errors.Is(err, ErrForbidden) {
		t.Errorf("post author editing someone else's comment: got %v, want ErrForbidden", err)
	}
	if err := svc.DeleteComment(ctx, p.ID, c.ID, author.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("post author deleting someone else's comment: got %v, want ErrForbidden", err)
	}
	if _, err := svc.UpdateComment(ctx, p.ID, c.ID, other.ID, "edited"); err != nil {
		t.Errorf("comment owner edit failed: %v", err)
	}

	// comment id under the wrong post is NotFound
	otherPost := newPost(t, svc, author.ID, PostInput{IsPublished: true})
	if _, err := svc.GetComment(ctx, otherPost.ID, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("comment scoped to wrong post: got %v, want ErrNotFound", err)
	}
}

func TestCommentCountIsComputedPerQuery(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	author := newUser(t, svc, "alice")
	p := newPost(t, svc, author.ID, PostInput{IsPublished: true})

	for i := 0; i < 3; i++ {
		if _, err := svc.AddComment(ctx, p.ID, author.ID, "c"); err != nil {
			t.Fatalf("add comment: %v", err)
		}
	}
	got, comments, err := svc.Detail(ctx, p.ID, 0)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if got.CommentCount != 3 {
		t.Errorf("comment count = %d, want 3", got.CommentCount)
	}
	if len(comments) != 3 {
		t.Errorf("comments = %d, want 3", len(comments))
	}
}

func TestDeletePostCascadesComments(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	author := newUser(t, svc, "alice")
	p := newPost(t, svc, author.ID, PostInput{IsPublished: true})
	c, err := svc.AddComment(ctx, p.ID, author.ID, "hello")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}

	if err := svc.DeletePost(ctx, p.ID, author.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	if _, err := svc.GetComment(ctx, p.ID, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("comment survived post deletion: %v", err)
	}
}

func TestAuthFlow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	newUser(t, svc, "alice")

	if _, err := svc.Register(ctx, "alice", "other@example.com", "password123"); !errors.Is(err, repository.ErrDuplicateUsername) {
		t.Errorf("duplicate username: got %v", err)
	}
	if _, err := svc.Register(ctx, "short", "short@example.com", "1234567"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("weak password: got %v", err)
	}

	if _, err := svc.Login(ctx, "alice", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("bad password login: got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user login: got %v", err)
	}

	session, err := svc.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	user, err := svc.UserBySession(ctx, session.ID)
	if err != nil {
		t.Fatalf("session lookup: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("session resolved to %s", user.Username)
	}

	if err := svc.Logout(ctx, session.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.UserBySession(ctx, session.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("revoked session still valid: %v", err)
	}
}

func TestExpiredSessionIsRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	newUser(t, svc, "alice")

	session, err := svc.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	svc.now = func() time.Time { return testNow.Add(25 * time.Hour) }
	if _, err := svc.UserBySession(ctx, session.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired session still valid: %v", err)
	}
}
