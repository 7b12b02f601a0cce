package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func commentIDs(c *gin.Context) (postID, commentID int, ok bool) {
	postID, err := strconv.Atoi(c.Param("post_id"))
	if err != nil {
		return 0, 0, false
	}
	commentID, err = strconv.Atoi(c.Param("comment_id"))
	if err != nil {
		return 0, 0, false
	}
	return postID, commentID, true
}

func (h *Handler) addComment(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("post_id"))
	if err != nil {
		h.notFound(c)
		return
	}
	text := strings.TrimSpace(c.PostForm("text"))
	if text == "" {
		post, comments, err := h.svc.Detail(c.Request.Context(), postID, viewerID(c))
		if err != nil {
			h.fail(c, err, detailURL(postID))
			return
		}
		h.render(c, http.StatusBadRequest, "detail", gin.H{
			"Post": post, "Comments": comments, "Error": "Comment text is required",
		})
		return
	}
	if _, err := h.svc.AddComment(c.Request.Context(), postID, viewerID(c), text); err != nil {
		h.fail(c, err, detailURL(postID))
		return
	}
	c.Redirect(http.StatusSeeOther, detailURL(postID))
}

func (h *Handler) editCommentForm(c *gin.Context) {
	postID, commentID, ok := commentIDs(c)
	if !ok {
		h.notFound(c)
		return
	}
	comment, err := h.svc.CommentForEdit(c.Request.Context(), postID, commentID, viewerID(c))
	if err != nil {
		h.fail(c, err, detailURL(postID))
		return
	}
	h.render(c, http.StatusOK, "comment", gin.H{"Comment": comment, "Editing": true})
}

func (h *Handler) editComment(c *gin.Context) {
	postID, commentID, ok := commentIDs(c)
	if !ok {
		h.notFound(c)
		return
	}
	text := strings.TrimSpace(c.PostForm("text"))
	if text == "" {
		comment, err := h.svc.CommentForEdit(c.Request.Context(), postID, commentID, viewerID(c))
		if err != nil {
			h.fail(c, err, detailURL(postID))
			return
		}
		h.render(c, http.StatusBadRequest, "comment", gin.H{
			"Comment": comment, "Editing": true, "Error": "Comment text is required",
		})
		return
	}
	if _, err := h.svc.UpdateComment(c.Request.Context(), postID, commentID, viewerID(c), text); err != nil {
		h.fail(c, err, detailURL(postID))
		return
	}
	c.Redirect(http.StatusSeeOther, detailURL(postID))
}

func (h *Handler) deleteCommentForm(c *gin.Context) {
	postID, commentID, ok := commentIDs(c)
	if !ok {
		h.notFound(c)
		return
	}
	comment, err := h.svc.CommentForEdit(c.Request.Context(), postID, commentID, viewerID(c))
	if err != nil {
		h.fail(c, err, detailURL(postID))
		return
	}
	h.render(c, http.StatusOK, "comment", gin.H{"Comment": comment})
}

func (h *Handler) deleteComment(c *gin.Context) {
	postID, commentID, ok := commentIDs(c)
	if !ok {
		h.notFound(c)
		return
	}
	if err := h.svc.DeleteComment(c.Request.Context(), postID, commentID, viewerID(c)); err != nil {
		h.fail(c, err, detailURL(postID))
		return
	}
	c.Redirect(http.StatusSeeOther, detailURL(postID))
}
