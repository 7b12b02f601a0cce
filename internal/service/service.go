package service

import (
	"context"
	"errors"
	"time"

	"github.com/gfdmit/blogicum/config"
	"github.com/gfdmit/blogicum/internal/policy"
	"github.com/gfdmit/blogicum/internal/repository"
)

var (
	ErrNotFound  = repository.ErrNotFound
	ErrForbidden = errors.New("viewer is not the author")
)

type Service struct {
	repo  repository.Repository
	media repository.MediaStore

	pageSize   int
	sessionTTL time.Duration

	// now is the request clock; replaced in tests.
	now func() time.Time
}

func New(repo repository.Repository, media repository.MediaStore, conf config.App) *Service {
	return &Service{
		repo:       repo,
		media:      media,
		pageSize:   conf.PostsPerPage,
		sessionTTL: conf.SessionTTL,
		now:        time.Now,
	}
}

func (svc *Service) Media() repository.MediaStore { return svc.media }

// PostPage is one page of a post list.
type PostPage struct {
	Posts      []repository.Post
	Page       int
	TotalPages int
	HasPrev    bool
	HasNext    bool
}

// PrevPage and NextPage exist for the pagination links; templates
// cannot do arithmetic.
func (pp *PostPage) PrevPage() int { return pp.Page - 1 }
func (pp *PostPage) NextPage() int { return pp.Page + 1 }

func (svc *Service) page(ctx context.Context, f repository.PostFilter, page int) (*PostPage, error) {
	if page < 1 {
		page = 1
	}
	total, err := svc.repo.CountPosts(ctx, f)
	if err != nil {
		return nil, err
	}
	totalPages := (total + svc.pageSize - 1) / svc.pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	f.Limit = svc.pageSize
	f.Offset = (page - 1) * svc.pageSize

	posts, err := svc.repo.ListPosts(ctx, f)
	if err != nil {
		return nil, err
	}
	return &PostPage{
		Posts:      posts,
		Page:       page,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}, nil
}

// Index returns publicly visible posts, newest pub_date first.
func (svc *Service) Index(ctx context.Context, page int) (*PostPage, error) {
	return svc.page(ctx, repository.PostFilter{
		PublishedOnly: true,
		Now:           svc.now(),
	}, page)
}

// Category returns the category (which must itself be published, else
// NotFound) and its publicly visible posts.
func (svc *Service) Category(ctx context.Context, slug string, page int) (*repository.Category, *PostPage, error) {
	category, err := svc.repo.GetCategoryBySlug(ctx, slug, true)
	if err != nil {
		return nil, nil, err
	}
	pp, err := svc.page(ctx, repository.PostFilter{
		PublishedOnly: true,
		Now:           svc.now(),
		CategoryID:    category.ID,
	}, page)
	if err != nil {
		return nil, nil, err
	}
	return category, pp, nil
}

// Profile returns one user's posts. The owner viewing their own
// profile sees everything, drafts and future-dated posts included;
// everyone else gets the public filter.
func (svc *Service) Profile(ctx context.Context, username string, viewerID, page int) (*repository.User, *PostPage, error) {
	profile, err := svc.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	pp, err := svc.page(ctx, repository.PostFilter{
		PublishedOnly: viewerID != profile.ID,
		Now:           svc.now(),
		AuthorID:      profile.ID,
	}, page)
	if err != nil {
		return nil, nil, err
	}
	return profile, pp, nil
}

// Detail returns a single post with its comments, oldest first.
// Non-owners get NotFound for anything the visibility predicate
// rejects, so a hidden post is indistinguishable from a missing one.
func (svc *Service) Detail(ctx context.Context, postID, viewerID int) (*repository.Post, []repository.Comment, error) {
	post, err := svc.repo.GetPost(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	if !policy.Visible(post, viewerID, svc.now()) {
		return nil, nil, ErrNotFound
	}
	comments, err := svc.repo.ListComments(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	return post, comments, nil
}

// PostForEdit fetches a post for its author's edit/delete pages.
// Unlike Detail it is existence-based: a non-owner gets ErrForbidden,
// not NotFound, and is sent back to the detail page by the caller.
func (svc *Service) PostForEdit(ctx context.Context, postID, viewerID int) (*repository.Post, error) {
	post, err := svc.repo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !policy.CanModify(post, viewerID) {
		return nil, ErrForbidden
	}
	return post, nil
}

// CommentForEdit is PostForEdit for comments, scoped to the post id.
func (svc *Service) CommentForEdit(ctx context.Context, postID, commentID, viewerID int) (*repository.Comment, error) {
	comment, err := svc.repo.GetComment(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}
	if !policy.CanModify(comment, viewerID) {
		return nil, ErrForbidden
	}
	return comment, nil
}

// PublicPosts serves the API surface: publicly visible posts only,
// optionally scoped to a category slug, with caller-chosen paging.
func (svc *Service) PublicPosts(ctx context.Context, categorySlug string, limit, offset int) ([]repository.Post, error) {
	f := repository.PostFilter{
		PublishedOnly: true,
		Now:           svc.now(),
		Limit:         limit,
		Offset:        offset,
	}
	if categorySlug != "" {
		category, err := svc.repo.GetCategoryBySlug(ctx, categorySlug, true)
		if err != nil {
			return nil, err
		}
		f.CategoryID = category.ID
	}
	return svc.repo.ListPosts(ctx, f)
}

// PostInput carries the editable post fields.
type PostInput struct {
	Title       string
	Text        string
	PubDate     time.Time
	IsPublished bool
	CategoryID  int
	LocationID  int
	ImageURL    *string
}

func (svc *Service) CreatePost(ctx context.Context, authorID int, in PostInput) (*repository.Post, error) {
	p := &repository.Post{
		Title:       in.Title,
		Text:        in.Text,
		PubDate:     in.PubDate,
		IsPublished: in.IsPublished,
		ImageURL:    in.ImageURL,
		Author:      repository.User{ID: authorID},
		Category:    repository.Category{ID: in.CategoryID},
	}
	if in.LocationID != 0 {
		p.Location = &repository.Location{ID: in.LocationID}
	}
	return svc.repo.CreatePost(ctx, p)
}

func (svc *Service) UpdatePost(ctx context.Context, postID, viewerID int, in PostInput) (*repository.Post, error) {
	post, err := svc.repo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !policy.CanModify(post, viewerID) {
		return nil, ErrForbidden
	}
	post.Title = in.Title
	post.Text = in.Text
	post.PubDate = in.PubDate
	post.IsPublished = in.IsPublished
	post.Category = repository.Category{ID: in.CategoryID}
	post.Location = nil
	if in.LocationID != 0 {
		post.Location = &repository.Location{ID: in.LocationID}
	}
	if in.ImageURL != nil {
		post.ImageURL = in.ImageURL
	}
	return svc.repo.UpdatePost(ctx, post)
}

func (svc *Service) DeletePost(ctx context.Context, postID, viewerID int) error {
	post, err := svc.repo.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if !policy.CanModify(post, viewerID) {
		return ErrForbidden
	}
	return svc.repo.DeletePost(ctx, postID)
}

// AddComment attaches a comment to a post the commenter can see.
// Comments inherit visibility from their post, so commenting on an
// invisible post reports NotFound.
func (svc *Service) AddComment(ctx context.Context, postID, authorID int, text string) (*repository.Comment, error) {
	post, err := svc.repo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !policy.Visible(post, authorID, svc.now()) {
		return nil, ErrNotFound
	}
	return svc.repo.CreateComment(ctx, postID, authorID, text)
}

func (svc *Service) GetComment(ctx context.Context, postID, commentID int) (*repository.Comment, error) {
	return svc.repo.GetComment(ctx, postID, commentID)
}

func (svc *Service) UpdateComment(ctx context.Context, postID, commentID, viewerID int, text string) (*repository.Comment, error) {
	comment, err := svc.repo.GetComment(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}
	if !policy.CanModify(comment, viewerID) {
		return nil, ErrForbidden
	}
	return svc.repo.UpdateComment(ctx, postID, commentID, text)
}

func (svc *Service) DeleteComment(ctx context.Context, postID, commentID, viewerID int) error {
	comment, err := svc.repo.GetComment(ctx, postID, commentID)
	if err != nil {
		return err
	}
	if !policy.CanModify(comment, viewerID) {
		return ErrForbidden
	}
	return svc.repo.DeleteComment(ctx, postID, commentID)
}

// Form data for the post create/edit pages.
func (svc *Service) Categories(ctx context.Context) ([]repository.Category, error) {
	return svc.repo.ListCategories(ctx, true)
}

func (svc *Service) Locations(ctx context.Context) ([]repository.Location, error) {
	return svc.repo.ListLocations(ctx, true)
}

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
}

func (svc *Service) UpdateProfile(ctx context.Context, userID int, in ProfileInput) (*repository.User, error) {
	user, err := svc.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Username = in.Username
	user.Email = in.Email
	user.FirstName = in.FirstName
	user.LastName = in.LastName
	return svc.repo.UpdateUser(ctx, user)
}
