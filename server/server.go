// Package server is the REST surface: a thin request/response mapping over
// the content service. Identity resolution happens in the middlewares; every
// handler passes an explicit actor down to the core.
package server

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"inkwell/blog"
	"inkwell/filestore"
	"inkwell/server/middlewares"
)

// NewRouter assembles the gin engine with CORS, actor resolution and the full
// route table. Callers own middlewares.Setup.
func NewRouter(svc *blog.Service, files filestore.FileStore) *gin.Engine {
	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()
	router.Use(corsMiddleware())

	a := NewAPI(svc, files)
	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", a.Register)
		authGroup.POST("/login", a.Login)
		authGroup.POST("/token/refresh", a.Refresh)
		authGroup.POST("/logout", middlewares.RequireAuth(), a.Logout)
		authGroup.POST("/change-password", middlewares.RequireAuth(), a.ChangePassword)
	}

	api.GET("/profile", middlewares.RequireAuth(), a.GetProfile)
	api.PUT("/profile", middlewares.RequireAuth(), a.UpdateProfile)

	posts := api.Group("/posts")
	{
		posts.GET("", middlewares.ResolveActor(), a.ListPosts)
		posts.GET("/:slug", middlewares.ResolveActor(), a.GetPost)
		posts.POST("", middlewares.RequireAuth(), a.CreatePost)
		posts.PUT("/:slug", middlewares.RequireAuth(), a.UpdatePost)
		posts.DELETE("/:slug", middlewares.RequireAuth(), a.DeletePost)
	}

	api.GET("/categories", a.ListCategories)
	api.GET("/categories/:slug", a.GetCategory)

	api.GET("/comments", a.ListComments)
	api.POST("/comments", middlewares.ResolveActor(), a.CreateComment)

	api.POST("/media", middlewares.RequireAuth(), a.UploadMedia)

	api.GET("/health", a.Health)

	return router
}

// corsMiddleware mirrors the frontend dev servers by default and takes a
// comma-separated override from CORS_ALLOWED_ORIGINS.
func corsMiddleware() gin.HandlerFunc {
	origins := []string{"http://localhost:5173", "http://localhost:3000"}
	if env := os.Getenv("CORS_ALLOWED_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	cfg.AddAllowHeaders("Authorization")
	return cors.New(cfg)
}
