package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gfdmit/blogicum/internal/policy"
	"github.com/gfdmit/blogicum/internal/repository"
)

const userKey = "currentUser"

// identify resolves the session cookie to a user and stashes it in the
// request context. Missing, expired or revoked sessions leave the
// request anonymous; pages decide for themselves what that means.
func (h *Handler) identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(h.conf.SessionCookie)
		if err == nil && cookie != "" {
			user, err := h.svc.UserBySession(c.Request.Context(), cookie)
			if err == nil {
				c.Set(userKey, user)
			}
		}
		c.Next()
	}
}

// requireAuth redirects anonymous requests to the login page.
func (h *Handler) requireAuth(c *gin.Context) {
	if currentUser(c) == nil {
		c.Redirect(http.StatusSeeOther, "/auth/login/")
		c.Abort()
	}
}

func currentUser(c *gin.Context) *repository.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, ok := v.(*repository.User)
	if !ok {
		return nil
	}
	return user
}

func viewerID(c *gin.Context) int {
	if user := currentUser(c); user != nil {
		return user.ID
	}
	return policy.AnonymousID
}
