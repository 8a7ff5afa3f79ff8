package journal

// NextOverallRating folds a post rating into a day's overall rating.
//
// The divisor is the number of days in the whole store plus one, not the
// number of posts on this day, so the value drifts as other days are added.
// It is not a mean.
func NextOverallRating(current, postRating float64, totalDayCount int64) float64 {
	return (current + postRating) / float64(totalDayCount+1)
}

// RecordPost applies NextOverallRating to d in place and returns the new value.
// The caller persists d.
func (d *Day) RecordPost(postRating float64, totalDayCount int64) float64 {
	d.OverallRating = NextOverallRating(d.OverallRating, postRating, totalDayCount)
	return d.OverallRating
}
