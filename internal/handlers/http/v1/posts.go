package v1

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gfdmit/blogicum/internal/service"
)

// createSegment is the reserved value of :post_id that selects the
// create page instead of a detail page.
const createSegment = "create"

func detailURL(postID int) string {
	return fmt.Sprintf("/posts/%d/", postID)
}

func profileURL(username string) string {
	return "/profile/" + username + "/"
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (h *Handler) index(c *gin.Context) {
	page, err := h.svc.Index(c.Request.Context(), pageParam(c))
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "index", gin.H{"Page": page})
}

func (h *Handler) category(c *gin.Context) {
	category, page, err := h.svc.Category(c.Request.Context(), c.Param("slug"), pageParam(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "category", gin.H{"Category": category, "Page": page})
}

func (h *Handler) postPage(c *gin.Context) {
	if c.Param("post_id") == createSegment {
		h.createPostForm(c)
		return
	}
	postID, err := strconv.Atoi(c.Param("post_id"))
	if err != nil {
		h.notFound(c)
		return
	}
	post, comments, err := h.svc.Detail(c.Request.Context(), postID, viewerID(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "detail", gin.H{"Post": post, "Comments": comments})
}

// postFormData loads the category and location choices for the
// create/edit form.
func (h *Handler) postFormData(c *gin.Context, data gin.H) (gin.H, error) {
	categories, err := h.svc.Categories(c.Request.Context())
	if err != nil {
		return nil, err
	}
	locations, err := h.svc.Locations(c.Request.Context())
	if err != nil {
		return nil, err
	}
	data["Categories"] = categories
	data["Locations"] = locations
	return data, nil
}

func (h *Handler) createPostForm(c *gin.Context) {
	if currentUser(c) == nil {
		c.Redirect(http.StatusSeeOther, "/auth/login/")
		return
	}
	data, err := h.postFormData(c, gin.H{})
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "create_post", data)
}

// pub_date arrives from a datetime-local input; the space-separated
// form is accepted for API clients posting forms directly.
var pubDateLayouts = []string{"2006-01-02T15:04", "2006-01-02 15:04"}

func parsePubDate(s string) (time.Time, error) {
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable pub_date %q", s)
}

// parsePostForm validates the submitted fields. A non-empty second
// return value is a user-facing validation message; the request must
// not be persisted when it is set.
func (h *Handler) parsePostForm(c *gin.Context) (service.PostInput, string) {
	in := service.PostInput{
		Title:       strings.TrimSpace(c.PostForm("title")),
		Text:        strings.TrimSpace(c.PostForm("text")),
		IsPublished: c.PostForm("is_published") != "",
	}
	if in.Title == "" || in.Text == "" {
		return in, "Title and text are required"
	}
	pubDate, err := parsePubDate(c.PostForm("pub_date"))
	if err != nil {
		return in, "Enter a valid publication date"
	}
	in.PubDate = pubDate

	in.CategoryID, err = strconv.Atoi(c.PostForm("category"))
	if err != nil || in.CategoryID <= 0 {
		return in, "Choose a category"
	}
	if loc := c.PostForm("location"); loc != "" {
		in.LocationID, err = strconv.Atoi(loc)
		if err != nil {
			return in, "Choose a valid location"
		}
	}

	file, header, err := c.Request.FormFile("image")
	if err == nil {
		defer file.Close()
		contentType := header.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			return in, "File is not an image"
		}
		url, err := h.svc.Media().PutImage(c.Request.Context(), file, header)
		if err != nil {
			return in, "Image upload failed"
		}
		in.ImageURL = &url
	}
	return in, ""
}

func (h *Handler) createPost(c *gin.Context) {
	if c.Param("post_id") != createSegment {
		h.notFound(c)
		return
	}
	user := currentUser(c)
	in, msg := h.parsePostForm(c)
	if msg != "" {
		data, err := h.postFormData(c, gin.H{"Error": msg, "Form": in})
		if err != nil {
			h.serverError(c, err)
			return
		}
		h.render(c, http.StatusBadRequest, "create_post", data)
		return
	}
	if _, err := h.svc.CreatePost(c.Request.Context(), user.ID, in); err != nil {
		h.serverError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, profileURL(user.Username))
}

func (h *Handler) editPostForm(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("post_id"))
	if err != nil {
		h.notFound(c)
		return
	}
	post, err := h.svc.PostForEdit(c.Request.Context(), postID, viewerID(c))
	if err != nil {
		h.fail(c, err, detailURL(postID))
		return
	}
	data, err := h.postFormData(c, gin.H{"Post": post})
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "create_post", data)
}

func (h *Handler) editPost(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("post_id"))
	if err != nil {
		h.notFound(c)
		return
	}
	in, msg := h.parsePostForm(c)
	if msg != "" {
		data, err := h.postFormData(c, gin.H{"Error": msg, "Form": in})
		if err != nil {
			h.serverError(c, err)
			return
		}
		h.render(c, http.StatusBadRequest, "create_post", data)
		return
	}
	post, err := h.svc.UpdatePost(c.Request.Context(), postID, viewerID(c), in)
	if err != nil {
		h.fail(c, err, detailURL(postID))
		return
	}
	c.Redirect(http.StatusSeeOther, detailURL(post.ID))
}

func (h *Handler) deletePostForm(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("post_id"))
	if err != nil {
		h.notFound(c)
		return
	}
	post, err := h.svc.PostForEdit(c.Request.Context(), postID, viewerID(c))
	if err != nil {
		h.fail(c, err, detailURL(postID))
		return
	}
	h.render(c, http.StatusOK, "delete_post", gin.H{"Post": post})
}

func (h *Handler) deletePost(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("post_id"))
	if err != nil {
		h.notFound(c)
		return
	}
	if err := h.svc.DeletePost(c.Request.Context(), postID, viewerID(c)); err != nil {
		h.fail(c, err, detailURL(postID))
		return
	}
	c.Redirect(http.StatusSeeOther, profileURL(currentUser(c).Username))
}
