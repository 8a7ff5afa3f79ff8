package journal

// Day aggregates the posts written for one calendar date.
// Date is used as a natural key by lookups but is not unique in the schema.
type Day struct {
	ID            int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Date          string  `gorm:"column:date;not null;index" json:"date"`
	OverallRating float64 `gorm:"column:overall_rating;not null" json:"overall_rating"`
	Posts         []Post  `gorm:"foreignKey:DayID;constraint:OnDelete:RESTRICT" json:"posts"`
}

func (Day) TableName() string { return "day" }

// Post is a single entry. Pic holds whatever the client sent (usually an
// uploaded asset URL); it is not a reference to the asset table.
type Post struct {
	ID       int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Location string  `gorm:"column:location;not null" json:"location"`
	Rating   float64 `gorm:"column:rating;not null" json:"rating"`
	Text     string  `gorm:"column:text" json:"text"`
	DayID    int64   `gorm:"column:day_id;not null;index" json:"day_id"`
	Pic      string  `gorm:"column:pic;not null" json:"pic"`
}

func (Post) TableName() string { return "post" }
