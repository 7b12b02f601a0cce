// Package policy holds the post-visibility and ownership decisions.
// Everything here is a pure function of its arguments; the clock is
// always passed in by the caller.
package policy

import (
	"time"

	"github.com/gfdmit/blogicum/internal/repository"
)

// AnonymousID is the viewer id used for requests without a session.
const AnonymousID = 0

// Ownable is anything with a single owning author. Post and Comment
// both satisfy it, so ownership checks are written once.
type Ownable interface {
	AuthorID() int
}

// Visible reports whether viewerID may read the post. The author sees
// their own content unconditionally; everyone else only sees posts
// that are published, in a published category, and past their pub_date
// as of now.
func Visible(p *repository.Post, viewerID int, now time.Time) bool {
	if viewerID != AnonymousID && viewerID == p.AuthorID() {
		return true
	}
	return p.IsPublished && p.Category.IsPublished && !p.PubDate.After(now)
}

// CanModify reports whether viewerID may edit or delete the entity.
// Ownership is the only criterion; there are no roles.
func CanModify(e Ownable, viewerID int) bool {
	return viewerID != AnonymousID && viewerID == e.AuthorID()
}
