package journal

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	CreateDay(ctx context.Context, d *Day) error
	GetDayByID(ctx context.Context, id int64) (*Day, error)
	// FindDayByDate returns the lowest-id day with this date. forUpdate locks
	// the row for the rest of the transaction where the database supports it.
	FindDayByDate(ctx context.Context, date string, forUpdate bool) (*Day, error)
	CountDays(ctx context.Context) (int64, error)
	UpdateDayRating(ctx context.Context, dayID int64, rating float64) error

	CreatePost(ctx context.Context, p *Post) error
	GetPostByID(ctx context.Context, id int64) (*Post, error)
	DeletePost(ctx context.Context, id int64) (*Post, error)
	ListPostsByDay(ctx context.Context, dayID int64) ([]Post, error)

	// Transaction runs fn against a repository bound to one database transaction.
	Transaction(ctx context.Context, fn func(tx Repository) error) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateDay(ctx context.Context, d *Day) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(d).Error
}

func (r *repository) GetDayByID(ctx context.Context, id int64) (*Day, error) {
	var d Day
	err := r.db.WithContext(ctx).
		Preload("Posts", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ?", id).
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDayNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) FindDayByDate(ctx context.Context, date string, forUpdate bool) (*Day, error) {
	q := r.db.WithContext(ctx).Where("date = ?", date).Order("id ASC")
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var d Day
	err := q.First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDayNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) CountDays(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Day{}).Count(&n).Error
	return n, err
}

func (r *repository) UpdateDayRating(ctx context.Context, dayID int64, rating float64) error {
	tx := r.db.WithContext(ctx).Model(&Day{}).Where("id = ?", dayID).Update("overall_rating", rating)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrDayNotFound
	}
	return nil
}

// CreatePost requires p.DayID to reference an existing day.
func (r *repository) CreatePost(ctx context.Context, p *Post) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Day{}).Where("id = ?", p.DayID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrDayNotFound
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) GetPostByID(ctx context.Context, id int64) (*Post, error) {
	var p Post
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePost removes the post and returns it as it was before deletion.
func (r *repository) DeletePost(ctx context.Context, id int64) (*Post, error) {
	var deleted *Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := (&repository{db: tx}).GetPostByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(&Post{}, p.ID).Error; err != nil {
			return err
		}
		deleted = p
		return nil
	})
	return deleted, err
}

func (r *repository) ListPostsByDay(ctx context.Context, dayID int64) ([]Post, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Day{}).Where("id = ?", dayID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrDayNotFound
	}
	posts := []Post{}
	err := r.db.WithContext(ctx).Where("day_id = ?", dayID).Order("id ASC").Find(&posts).Error
	return posts, err
}

func (r *repository) Transaction(ctx context.Context, fn func(tx Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}
