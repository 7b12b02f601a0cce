package repository

import "time"

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Category struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

type Location struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

type Post struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Text        string    `json:"text"`
	PubDate     time.Time `json:"pub_date"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	ImageURL    *string   `json:"image_url,omitempty"`

	Author   User      `json:"author"`
	Category Category  `json:"category"`
	Location *Location `json:"location,omitempty"`

	// Count of related comments, computed by the store per query.
	CommentCount int `json:"comment_count"`
}

func (p *Post) AuthorID() int { return p.Author.ID }

type Comment struct {
	ID        int       `json:"id"`
	PostID    int       `json:"post_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`

	Author User `json:"author"`
}

func (c *Comment) AuthorID() int { return c.Author.ID }

type Session struct {
	ID        string
	UserID    int
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}
