package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the API routes and middleware.
func NewRouter(h *RepoHandler) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogger())
	router.Use(CORS())

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	router.GET("/health", h.Health)

	api := router.Group("/api")
	api.GET("/repos", h.ListRepos)
	api.POST("/repos/refresh", h.RefreshRepos)
	api.GET("/stats", h.Stats)

	return router
}
