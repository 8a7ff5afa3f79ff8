package journal

// Pointer fields distinguish a missing value from a zero one.
type CreateDayRequest struct {
	Date          *string  `json:"date" validate:"required"`
	OverallRating *float64 `json:"overall_rating" validate:"required"`
}

type CreatePostRequest struct {
	Location *string  `json:"location" validate:"required"`
	Rating   *float64 `json:"rating" validate:"required"`
	Text     *string  `json:"text" validate:"required"`
	Pic      *string  `json:"pic" validate:"required"`
	DateStr  *string  `json:"date_str" validate:"required"`
}

type DayResponse struct {
	ID            int64   `json:"id"`
	Date          string  `json:"date"`
	OverallRating float64 `json:"overall_rating"`
	Posts         []Post  `json:"posts"`
}

func toDayResponse(d *Day) DayResponse {
	posts := d.Posts
	if posts == nil {
		posts = []Post{}
	}
	return DayResponse{
		ID:            d.ID,
		Date:          d.Date,
		OverallRating: d.OverallRating,
		Posts:         posts,
	}
}
