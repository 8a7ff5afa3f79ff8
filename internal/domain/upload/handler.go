package upload

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"daylog/internal/pkg/response"
	"daylog/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type UploadRequest struct {
	ImageData *string `json:"image_data" validate:"required"`
}

// Upload godoc
// @Summary Upload a base64 image
// @Description Accepts a data URL or bare base64 PNG/JPEG/GIF, stores it publicly and returns its URL.
// @Tags Uploads
// @Accept json
// @Produce json
// @Param request body UploadRequest true "image_data"
// @Success 201 {object} AssetResponse
// @Failure 400,404,413,415,422,500,502 {object} map[string]interface{}
// @Router /upload/ [post]
func (h *Handler) Upload(c *gin.Context) {
	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body!")
		return
	}
	// missing image_data is reported as 404, not 400
	if errs := validator.Validate(req); errs != nil || *req.ImageData == "" {
		response.Error(c, http.StatusNotFound, "No base64 image found!")
		return
	}

	asset, err := h.service.Upload(c.Request.Context(), *req.ImageData)
	if err != nil {
		_ = c.Error(err)
		switch {
		case errors.Is(err, ErrImageDataMissing):
			response.Error(c, http.StatusNotFound, "No base64 image found!")
		case errors.Is(err, ErrUnsupportedMediaType):
			response.Error(c, http.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, ErrInvalidEncoding):
			response.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrCorruptImage):
			response.Error(c, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, ErrImageTooLarge):
			response.Error(c, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, ErrStorage):
			response.Error(c, http.StatusBadGateway, "upload failed")
		default:
			response.Error(c, http.StatusInternalServerError, "failed to save asset")
		}
		return
	}

	response.Success(c, http.StatusCreated, asset.Serialize())
}
