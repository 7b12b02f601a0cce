package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gfdmit/blogicum/internal/repository"
	"github.com/gfdmit/blogicum/internal/service"
)

func (h *Handler) registrationForm(c *gin.Context) {
	h.render(c, http.StatusOK, "registration", nil)
}

func (h *Handler) register(c *gin.Context) {
	username := c.PostForm("username")
	email := c.PostForm("email")
	password := c.PostForm("password")
	if username == "" || email == "" || password == "" {
		h.render(c, http.StatusBadRequest, "registration", gin.H{"Error": "All fields are required"})
		return
	}
	_, err := h.svc.Register(c.Request.Context(), username, email, password)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername),
			errors.Is(err, repository.ErrDuplicateEmail),
			errors.Is(err, service.ErrWeakPassword),
			errors.Is(err, service.ErrPasswordTooLong):
			h.render(c, http.StatusBadRequest, "registration", gin.H{"Error": err.Error()})
		default:
			h.serverError(c, err)
		}
		return
	}
	c.Redirect(http.StatusSeeOther, "/auth/login/")
}

func (h *Handler) loginForm(c *gin.Context) {
	h.render(c, http.StatusOK, "login", nil)
}

func (h *Handler) login(c *gin.Context) {
	session, err := h.svc.Login(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.render(c, http.StatusBadRequest, "login", gin.H{"Error": err.Error()})
			return
		}
		h.serverError(c, err)
		return
	}
	c.SetCookie(h.conf.SessionCookie, session.ID, int(h.svc.SessionTTL().Seconds()), "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) logout(c *gin.Context) {
	if cookie, err := c.Cookie(h.conf.SessionCookie); err == nil && cookie != "" {
		if err := h.svc.Logout(c.Request.Context(), cookie); err != nil {
			h.serverError(c, err)
			return
		}
		c.SetCookie(h.conf.SessionCookie, "", -1, "/", "", false, true)
	}
	c.Redirect(http.StatusSeeOther, "/")
}
