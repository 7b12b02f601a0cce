package repository

import (
	"context"
	"errors"
	"mime/multipart"
	"time"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)

// PostFilter describes one list-query shape. The zero value means
// "all posts". When PublishedOnly is set the store applies the public
// visibility conjunction (is_published AND category published AND
// pub_date <= Now); Now is supplied by the caller so that visibility
// is evaluated per request, never captured at startup.
type PostFilter struct {
	PublishedOnly bool
	Now           time.Time
	CategoryID    int
	AuthorID      int
	Limit         int
	Offset        int
}

type Repository interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (*User, error)
	GetUserByID(ctx context.Context, id int) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	UpdateUser(ctx context.Context, u *User) (*User, error)

	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	RevokeSession(ctx context.Context, id string) error

	GetCategoryBySlug(ctx context.Context, slug string, publishedOnly bool) (*Category, error)
	ListCategories(ctx context.Context, publishedOnly bool) ([]Category, error)
	ListLocations(ctx context.Context, publishedOnly bool) ([]Location, error)

	CreatePost(ctx context.Context, p *Post) (*Post, error)
	GetPost(ctx context.Context, id int) (*Post, error)
	ListPosts(ctx context.Context, f PostFilter) ([]Post, error)
	CountPosts(ctx context.Context, f PostFilter) (int, error)
	UpdatePost(ctx context.Context, p *Post) (*Post, error)
	DeletePost(ctx context.Context, id int) error

	CreateComment(ctx context.Context, postID, authorID int, text string) (*Comment, error)
	GetComment(ctx context.Context, postID, commentID int) (*Comment, error)
	ListComments(ctx context.Context, postID int) ([]Comment, error)
	UpdateComment(ctx context.Context, postID, commentID int, text string) (*Comment, error)
	DeleteComment(ctx context.Context, postID, commentID int) error
}

// MediaStore keeps uploaded post images and hands back a URL that can
// be stored on the post row.
type MediaStore interface {
	PutImage(ctx context.Context, file multipart.File, header *multipart.FileHeader) (string, error)
}
