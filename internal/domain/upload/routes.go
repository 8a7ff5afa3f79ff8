package upload

import "github.com/gin-gonic/gin"

func RegisterRoutes(r gin.IRouter, h *Handler) {
	r.POST("/upload/", h.Upload)
}
