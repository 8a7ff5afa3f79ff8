package journal

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"daylog/internal/database"
	"daylog/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// CreateDay godoc
// @Summary Create a day
// @Tags Days
// @Accept json
// @Produce json
// @Param request body CreateDayRequest true "date and overall_rating"
// @Success 201 {object} DayResponse
// @Failure 400,500 {object} map[string]interface{}
// @Router /day/ [post]
func (h *Handler) CreateDay(c *gin.Context) {
	var req CreateDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Information missing!")
		return
	}

	d, err := h.svc.CreateDay(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "Information missing!")
			return
		}
		h.storageFailure(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toDayResponse(d))
}

// GetDay godoc
// @Summary Get a day with its posts
// @Tags Days
// @Produce json
// @Param id path int true "Day ID"
// @Success 200 {object} DayResponse
// @Failure 404,500 {object} map[string]interface{}
// @Router /day/{id}/ [get]
func (h *Handler) GetDay(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.Error(c, http.StatusNotFound, "Invalid day was provided!")
		return
	}
	d, err := h.svc.GetDay(c.Request.Context(), id)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, toDayResponse(d))
}

// FindDayByDate godoc
// @Summary Look up a day by its date string
// @Tags Days
// @Produce json
// @Param date query string true "Date key"
// @Success 200 {object} DayResponse
// @Failure 400,404,500 {object} map[string]interface{}
// @Router /day/ [get]
func (h *Handler) FindDayByDate(c *gin.Context) {
	d, err := h.svc.FindDayByDate(c.Request.Context(), c.Query("date"))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, toDayResponse(d))
}

// CreatePost godoc
// @Summary Add a post to the day for date_str
// @Description Creates the day with rating 0 when no day has that date, then updates its overall rating.
// @Tags Posts
// @Accept json
// @Produce json
// @Param request body CreatePostRequest true "Post fields"
// @Success 201 {object} Post
// @Failure 400,500 {object} map[string]interface{}
// @Router /day/posts/ [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid response body!")
		return
	}

	p, err := h.svc.CreatePost(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "Invalid response body!")
			return
		}
		h.respondErr(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

// GetPost godoc
// @Summary Get a post
// @Tags Posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} Post
// @Failure 404,500 {object} map[string]interface{}
// @Router /posts/{id}/ [get]
func (h *Handler) GetPost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.Error(c, http.StatusNotFound, "Post not found!")
		return
	}
	p, err := h.svc.GetPost(c.Request.Context(), id)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// ListPostsByDay godoc
// @Summary List the posts of a day
// @Tags Posts
// @Produce json
// @Param dayId path int true "Day ID"
// @Success 200 {array} Post
// @Failure 404,500 {object} map[string]interface{}
// @Router /posts/day/{dayId}/ [get]
func (h *Handler) ListPostsByDay(c *gin.Context) {
	id, ok := parseID(c, "dayId")
	if !ok {
		response.Error(c, http.StatusNotFound, "Invalid day was provided!")
		return
	}
	posts, err := h.svc.ListPostsByDay(c.Request.Context(), id)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, posts)
}

// DeletePost godoc
// @Summary Delete a post
// @Tags Posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} Post
// @Failure 404,500 {object} map[string]interface{}
// @Router /posts/{id}/ [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.Error(c, http.StatusNotFound, "Post not found!")
		return
	}
	p, err := h.svc.DeletePost(c.Request.Context(), id)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDayNotFound):
		response.Error(c, http.StatusNotFound, "Invalid day was provided!")
	case errors.Is(err, ErrPostNotFound):
		response.Error(c, http.StatusNotFound, "Post not found!")
	default:
		h.storageFailure(c, err)
	}
}

func (h *Handler) storageFailure(c *gin.Context, err error) {
	_ = c.Error(err)
	if database.IsUnavailable(err) {
		response.Error(c, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	response.Error(c, http.StatusInternalServerError, "internal error")
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
