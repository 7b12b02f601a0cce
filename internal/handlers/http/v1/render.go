package v1

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gfdmit/blogicum/internal/service"
)

// render executes a page template with the signed-in user merged into
// the data map.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = currentUser(c)
	c.HTML(status, name, data)
}

func (h *Handler) notFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "404", nil)
}

func (h *Handler) serverError(c *gin.Context, err error) {
	log.Printf("[HANDLER ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	h.render(c, http.StatusInternalServerError, "500", nil)
}

// fail maps a service error onto the page flow: unknown or invisible
// content becomes the 404 page, a failed ownership check becomes a
// redirect to the post's detail page, anything else is a 500.
func (h *Handler) fail(c *gin.Context, err error, detailURL string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		h.notFound(c)
	case errors.Is(err, service.ErrForbidden):
		c.Redirect(http.StatusSeeOther, detailURL)
	default:
		h.serverError(c, err)
	}
}

func (h *Handler) staticPage(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.render(c, http.StatusOK, name, nil)
	}
}
