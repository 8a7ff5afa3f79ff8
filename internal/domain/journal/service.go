package journal

import (
	"context"
	"errors"
	"fmt"

	"daylog/internal/pkg/logger"
	"daylog/internal/pkg/validator"
)

type Service struct {
	repo  Repository
	log   *logger.Logger
	dates *keyedMutex
}

func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{
		repo:  repo,
		log:   log.With("service", "JournalService"),
		dates: newKeyedMutex(),
	}
}

func (s *Service) CreateDay(ctx context.Context, req CreateDayRequest) (*Day, error) {
	if errs := validator.Validate(req); errs != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, errs)
	}
	d := &Day{Date: *req.Date, OverallRating: *req.OverallRating, Posts: []Post{}}
	if err := s.repo.CreateDay(ctx, d); err != nil {
		return nil, storageErr(err)
	}
	return d, nil
}

func (s *Service) GetDay(ctx context.Context, id int64) (*Day, error) {
	d, err := s.repo.GetDayByID(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	return d, nil
}

// FindDayByDate returns the first day recorded for date, with its posts.
func (s *Service) FindDayByDate(ctx context.Context, date string) (*Day, error) {
	if date == "" {
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	}
	d, err := s.repo.FindDayByDate(ctx, date, false)
	if err != nil {
		return nil, storageErr(err)
	}
	return s.GetDay(ctx, d.ID)
}

// CreatePost attaches a post to the day for req.DateStr, creating that day
// with rating 0 if needed, and folds the post rating into the day rating.
// Posts for the same date are serialized so the rating update is not lost.
func (s *Service) CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error) {
	if errs := validator.Validate(req); errs != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, errs)
	}
	date := *req.DateStr

	unlock := s.dates.Lock(date)
	defer unlock()

	var created *Post
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		day, err := tx.FindDayByDate(ctx, date, true)
		if errors.Is(err, ErrDayNotFound) {
			day = &Day{Date: date, OverallRating: 0}
			if err := tx.CreateDay(ctx, day); err != nil {
				return err
			}
			s.log.Info("created day for post", "day_id", day.ID, "date", date)
		} else if err != nil {
			return err
		}

		dayCount, err := tx.CountDays(ctx)
		if err != nil {
			return err
		}

		post := &Post{
			Location: *req.Location,
			Rating:   *req.Rating,
			Text:     *req.Text,
			DayID:    day.ID,
			Pic:      *req.Pic,
		}
		if err := tx.CreatePost(ctx, post); err != nil {
			return err
		}

		previous := day.OverallRating
		day.RecordPost(post.Rating, dayCount)
		if err := tx.UpdateDayRating(ctx, day.ID, day.OverallRating); err != nil {
			return err
		}
		s.log.Debug("day rating updated",
			"day_id", day.ID, "previous", previous, "post_rating", post.Rating,
			"day_count", dayCount, "overall_rating", day.OverallRating,
		)

		created = post
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return created, nil
}

func (s *Service) GetPost(ctx context.Context, id int64) (*Post, error) {
	p, err := s.repo.GetPostByID(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	return p, nil
}

// DeletePost removes a post. The day's overall rating is left untouched.
func (s *Service) DeletePost(ctx context.Context, id int64) (*Post, error) {
	p, err := s.repo.DeletePost(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	return p, nil
}

// ListPostsByDay returns the day's posts in creation order; empty, not nil,
// when the day exists but has none.
func (s *Service) ListPostsByDay(ctx context.Context, dayID int64) ([]Post, error) {
	posts, err := s.repo.ListPostsByDay(ctx, dayID)
	if err != nil {
		return nil, storageErr(err)
	}
	return posts, nil
}

// storageErr passes domain errors through and tags everything else as ErrStorage.
func storageErr(err error) error {
	if errors.Is(err, ErrDayNotFound) || errors.Is(err, ErrPostNotFound) || errors.Is(err, ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
