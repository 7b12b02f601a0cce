package v1

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gfdmit/blogicum/config"
	gql "github.com/gfdmit/blogicum/internal/handlers/http/v1/graphql"
	"github.com/gfdmit/blogicum/internal/service"
)

type Handler struct {
	svc  *service.Service
	conf config.App
}

func New(svc *service.Service, conf config.App) (*gin.Engine, error) {
	var (
		router = gin.New()
	)

	router.Use(gin.Logger(), gin.Recovery())
	router.LoadHTMLGlob(conf.Templates)

	h := &Handler{svc: svc, conf: conf}

	router.Use(h.identify())

	router.GET("/", h.index)
	router.GET("/category/:slug/", h.category)

	// gin cannot register /posts/create/ next to /posts/:post_id/,
	// so "create" is a reserved segment dispatched in postPage.
	posts := router.Group("/posts")
	{
		posts.GET("/:post_id/", h.postPage)
		posts.POST("/:post_id/", h.requireAuth, h.createPost)
		posts.GET("/:post_id/edit/", h.requireAuth, h.editPostForm)
		posts.POST("/:post_id/edit/", h.requireAuth, h.editPost)
		posts.GET("/:post_id/delete/", h.requireAuth, h.deletePostForm)
		posts.POST("/:post_id/delete/", h.requireAuth, h.deletePost)
		posts.POST("/:post_id/comment/", h.requireAuth, h.addComment)
		posts.GET("/:post_id/edit_comment/:comment_id/", h.requireAuth, h.editCommentForm)
		posts.POST("/:post_id/edit_comment/:comment_id/", h.requireAuth, h.editComment)
		posts.GET("/:post_id/delete_comment/:comment_id/", h.requireAuth, h.deleteCommentForm)
		posts.POST("/:post_id/delete_comment/:comment_id/", h.requireAuth, h.deleteComment)
	}

	// same trick for /profile/edit/ next to /profile/:username/
	profile := router.Group("/profile")
	{
		profile.GET("/:username/", h.profilePage)
		profile.POST("/:username/", h.requireAuth, h.editProfile)
	}

	auth := router.Group("/auth")
	{
		auth.GET("/registration/", h.registrationForm)
		auth.POST("/registration/", h.register)
		auth.GET("/login/", h.loginForm)
		auth.POST("/login/", h.login)
		auth.POST("/logout/", h.logout)
	}

	pages := router.Group("/pages")
	{
		pages.GET("/about/", h.staticPage("about"))
		pages.GET("/rules/", h.staticPage("rules"))
	}

	gqlHandler, err := gql.New(svc)
	if err != nil {
		return nil, err
	}

	apiGroup := router.Group("/api/v1")
	{
		apiGroup.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"*"},
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
			ExposeHeaders:    []string{"Link"},
			AllowCredentials: false,
			MaxAge:           300 * time.Second,
		}))

		apiGroup.Any("/graphql", gin.WrapH(gqlHandler))

		apiGroup.GET("/ping", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
	}

	router.NoRoute(h.notFound)

	return router, nil
}
