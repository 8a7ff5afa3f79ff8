package upload

import "time"

// createdAtLayout is a space-separated timestamp with microseconds.
const createdAtLayout = "2006-01-02 15:04:05.000000"

// Asset records an image that was uploaded to object storage.
// It is not linked to posts; clients copy the URL into a post themselves.
type Asset struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	BaseURL   string    `gorm:"column:base_url;not null" json:"-"`
	Salt      string    `gorm:"column:salt;not null" json:"-"`
	Extension string    `gorm:"column:extension;not null" json:"-"`
	Width     int       `gorm:"column:width;not null" json:"width"`
	Height    int       `gorm:"column:height;not null" json:"height"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"-"`
}

func (Asset) TableName() string { return "asset" }

// Key is the object-storage key, {salt}.{extension}.
func (a *Asset) Key() string { return a.Salt + "." + a.Extension }

func (a *Asset) URL() string { return a.BaseURL + "/" + a.Key() }

type AssetResponse struct {
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
}

func (a *Asset) Serialize() AssetResponse {
	return AssetResponse{
		URL:       a.URL(),
		CreatedAt: a.CreatedAt.Format(createdAtLayout),
	}
}
