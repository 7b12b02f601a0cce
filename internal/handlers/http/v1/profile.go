package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gfdmit/blogicum/internal/repository"
	"github.com/gfdmit/blogicum/internal/service"
)

// editSegment is the reserved value of :username that selects the
// profile edit page.
const editSegment = "edit"

func (h *Handler) profilePage(c *gin.Context) {
	if c.Param("username") == editSegment {
		h.editProfileForm(c)
		return
	}
	profile, page, err := h.svc.Profile(c.Request.Context(), c.Param("username"), viewerID(c), pageParam(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.notFound(c)
			return
		}
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "profile", gin.H{"Profile": profile, "Page": page})
}

func (h *Handler) editProfileForm(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.Redirect(http.StatusSeeOther, "/auth/login/")
		return
	}
	h.render(c, http.StatusOK, "edit_profile", gin.H{"Form": user})
}

func (h *Handler) editProfile(c *gin.Context) {
	if c.Param("username") != editSegment {
		h.notFound(c)
		return
	}
	user := currentUser(c)
	in := service.ProfileInput{
		Username:  c.PostForm("username"),
		Email:     c.PostForm("email"),
		FirstName: c.PostForm("first_name"),
		LastName:  c.PostForm("last_name"),
	}
	if in.Username == "" || in.Email == "" {
		h.render(c, http.StatusBadRequest, "edit_profile", gin.H{
			"Form": in, "Error": "Username and email are required",
		})
		return
	}
	updated, err := h.svc.UpdateProfile(c.Request.Context(), user.ID, in)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) || errors.Is(err, repository.ErrDuplicateEmail) {
			h.render(c, http.StatusBadRequest, "edit_profile", gin.H{"Form": in, "Error": err.Error()})
			return
		}
		h.serverError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, profileURL(updated.Username))
}
