// Package memory is an in-memory Repository used by tests. It mirrors
// the relational semantics the postgres implementation gets from the
// schema: scoped comment lookups, comment counts computed per query,
// and cascade deletion of a post's comments.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gfdmit/blogicum/internal/repository"
)

type memoryRepository struct {
	mu sync.Mutex

	users      map[int]*repository.User
	sessions   map[string]*repository.Session
	categories map[int]*repository.Category
	locations  map[int]*repository.Location
	posts      map[int]*repository.Post
	comments   map[int]*repository.Comment

	nextUser, nextPost, nextComment int
}

func New() *memoryRepository {
	return &memoryRepository{
		users:       map[int]*repository.User{},
		sessions:    map[string]*repository.Session{},
		categories:  map[int]*repository.Category{},
		locations:   map[int]*repository.Location{},
		posts:       map[int]*repository.Post{},
		comments:    map[int]*repository.Comment{},
		nextUser:    1,
		nextPost:    1,
		nextComment: 1,
	}
}

// Seed helpers used by tests.

func (mr *memoryRepository) AddCategory(c repository.Category) repository.Category {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.categories[c.ID] = &c
	return c
}

func (mr *memoryRepository) AddLocation(l repository.Location) repository.Location {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.locations[l.ID] = &l
	return l
}

func (mr *memoryRepository) CreateUser(ctx context.Context, username, email, passwordHash string) (*repository.User, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	for _, u := range mr.users {
		if u.Username == username {
			return nil, repository.ErrDuplicateUsername
		}
		if u.Email == email {
			return nil, repository.ErrDuplicateEmail
		}
	}
	u := &repository.User{
		ID:           mr.nextUser,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}
	mr.nextUser++
	mr.users[u.ID] = u
	out := *u
	return &out, nil
}

func (mr *memoryRepository) GetUserByID(ctx context.Context, id int) (*repository.User, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	u, ok := mr.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (mr *memoryRepository) GetUserByUsername(ctx context.Context, username string) (*repository.User, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	for _, u := range mr.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (mr *memoryRepository) UpdateUser(ctx context.Context, u *repository.User) (*repository.User, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	stored, ok := mr.users[u.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	stored.Username = u.Username
	stored.Email = u.Email
	stored.FirstName = u.FirstName
	stored.LastName = u.LastName
	out := *stored
	return &out, nil
}

func (mr *memoryRepository) CreateSession(ctx context.Context, s *repository.Session) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	stored := *s
	mr.sessions[s.ID] = &stored
	return nil
}

func (mr *memoryRepository) GetSession(ctx context.Context, id string) (*repository.Session, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	s, ok := mr.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *s
	return &out, nil
}

func (mr *memoryRepository) RevokeSession(ctx context.Context, id string) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	s, ok := mr.sessions[id]
	if !ok {
		return nil
	}
	now := s.ExpiresAt
	s.RevokedAt = &now
	return nil
}

func (mr *memoryRepository) GetCategoryBySlug(ctx context.Context, slug string, publishedOnly bool) (*repository.Category, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	for _, c := range mr.categories {
		if c.Slug == slug {
			if publishedOnly && !c.IsPublished {
				return nil, repository.ErrNotFound
			}
			out := *c
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (mr *memoryRepository) ListCategories(ctx context.Context, publishedOnly bool) ([]repository.Category, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	out := []repository.Category{}
	for _, c := range mr.categories {
		if publishedOnly && !c.IsPublished {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (mr *memoryRepository) ListLocations(ctx context.Context, publishedOnly bool) ([]repository.Location, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	out := []repository.Location{}
	for _, l := range mr.locations {
		if publishedOnly && !l.IsPublished {
			continue
		}
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (mr *memoryRepository) matches(p *repository.Post, f repository.PostFilter) bool {
	if f.PublishedOnly {
		category := mr.categories[p.Category.ID]
		if !p.IsPublished || category == nil || !category.IsPublished || p.PubDate.After(f.Now) {
			return false
		}
	}
	if f.CategoryID != 0 && p.Category.ID != f.CategoryID {
		return false
	}
	if f.AuthorID != 0 && p.Author.ID != f.AuthorID {
		return false
	}
	return true
}

// hydrate fills in the joined rows and the comment count the way the
// postgres SELECT does.
func (mr *memoryRepository) hydrate(p *repository.Post) repository.Post {
	out := *p
	if u, ok := mr.users[p.Author.ID]; ok {
		out.Author = *u
	}
	if c, ok := mr.categories[p.Category.ID]; ok {
		out.Category = *c
	}
	if p.Location != nil {
		if l, ok := mr.locations[p.Location.ID]; ok {
			loc := *l
			out.Location = &loc
		}
	}
	count := 0
	for _, cm := range mr.comments {
		if cm.PostID == p.ID {
			count++
		}
	}
	out.CommentCount = count
	return out
}

func (mr *memoryRepository) ListPosts(ctx context.Context, f repository.PostFilter) ([]repository.Post, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	out := []repository.Post{}
	for _, p := range mr.posts {
		if mr.matches(p, f) {
			out = append(out, mr.hydrate(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PubDate.After(out[j].PubDate) })
	if f.Limit > 0 {
		if f.Offset >= len(out) {
			return []repository.Post{}, nil
		}
		out = out[f.Offset:]
		if len(out) > f.Limit {
			out = out[:f.Limit]
		}
	}
	return out, nil
}

func (mr *memoryRepository) CountPosts(ctx context.Context, f repository.PostFilter) (int, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	n := 0
	for _, p := range mr.posts {
		if mr.matches(p, f) {
			n++
		}
	}
	return n, nil
}

func (mr *memoryRepository) GetPost(ctx context.Context, id int) (*repository.Post, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	p, ok := mr.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := mr.hydrate(p)
	return &out, nil
}

func (mr *memoryRepository) CreatePost(ctx context.Context, p *repository.Post) (*repository.Post, error) {
	mr.mu.Lock()
	stored := *p
	stored.ID = mr.nextPost
	mr.nextPost++
	mr.posts[stored.ID] = &stored
	mr.mu.Unlock()
	return mr.GetPost(ctx, stored.ID)
}

func (mr *memoryRepository) UpdatePost(ctx context.Context, p *repository.Post) (*repository.Post, error) {
	mr.mu.Lock()
	stored, ok := mr.posts[p.ID]
	if !ok {
		mr.mu.Unlock()
		return nil, repository.ErrNotFound
	}
	stored.Title = p.Title
	stored.Text = p.Text
	stored.PubDate = p.PubDate
	stored.IsPublished = p.IsPublished
	stored.ImageURL = p.ImageURL
	stored.Category = repository.Category{ID: p.Category.ID}
	stored.Location = nil
	if p.Location != nil {
		stored.Location = &repository.Location{ID: p.Location.ID}
	}
	mr.mu.Unlock()
	return mr.GetPost(ctx, p.ID)
}

func (mr *memoryRepository) DeletePost(ctx context.Context, id int) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	if _, ok := mr.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(mr.posts, id)
	// ON DELETE CASCADE
	for cid, cm := range mr.comments {
		if cm.PostID == id {
			delete(mr.comments, cid)
		}
	}
	return nil
}

func (mr *memoryRepository) CreateComment(ctx context.Context, postID, authorID int, text string) (*repository.Comment, error) {
	mr.mu.Lock()
	c := &repository.Comment{
		ID:        mr.nextComment,
		PostID:    postID,
		Text:      text,
		CreatedAt: time.Now(),
		Author:    repository.User{ID: authorID},
	}
	mr.nextComment++
	mr.comments[c.ID] = c
	mr.mu.Unlock()
	return mr.GetComment(ctx, postID, c.ID)
}

func (mr *memoryRepository) GetComment(ctx context.Context, postID, commentID int) (*repository.Comment, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	c, ok := mr.comments[commentID]
	if !ok || c.PostID != postID {
		return nil, repository.ErrNotFound
	}
	out := *c
	if u, ok := mr.users[c.Author.ID]; ok {
		out.Author = *u
	}
	return &out, nil
}

func (mr *memoryRepository) ListComments(ctx context.Context, postID int) ([]repository.Comment, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	out := []repository.Comment{}
	for _, c := range mr.comments {
		if c.PostID != postID {
			continue
		}
		cm := *c
		if u, ok := mr.users[c.Author.ID]; ok {
			cm.Author = *u
		}
		out = append(out, cm)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (mr *memoryRepository) UpdateComment(ctx context.Context, postID, commentID int, text string) (*repository.Comment, error) {
	mr.mu.Lock()
	c, ok := mr.comments[commentID]
	if !ok || c.PostID != postID {
		mr.mu.Unlock()
		return nil, repository.ErrNotFound
	}
	c.Text = text
	mr.mu.Unlock()
	return mr.GetComment(ctx, postID, commentID)
}

func (mr *memoryRepository) DeleteComment(ctx context.Context, postID, commentID int) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	c, ok := mr.comments[commentID]
	if !ok || c.PostID != postID {
		return repository.ErrNotFound
	}
	delete(mr.comments, commentID)
	return nil
}
