package journal

import "github.com/gin-gonic/gin"

func RegisterRoutes(r gin.IRouter, h *Handler) {
	day := r.Group("/day")
	{
		day.POST("/", h.CreateDay)
		day.GET("/", h.FindDayByDate)
		day.GET("/:id/", h.GetDay)
		day.POST("/posts/", h.CreatePost)
	}

	posts := r.Group("/posts")
	{
		posts.GET("/:id/", h.GetPost)
		posts.DELETE("/:id/", h.DeletePost)
		posts.GET("/day/:dayId/", h.ListPostsByDay)
	}
}
