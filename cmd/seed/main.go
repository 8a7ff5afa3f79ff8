package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/joho/godotenv"

	"daylog/internal/config"
	"daylog/internal/database"
	"daylog/internal/domain/journal"
	"daylog/internal/domain/upload"
	"daylog/internal/pkg/logger"
)

var locations = []string{"Home", "Office", "Park", "Gym", "Cafe", "Beach"}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	db, err := database.Connect(cfg.DatabaseURL, logger.NewNop(), cfg.LogSQL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := database.Migrate(db, &upload.Asset{}, &journal.Day{}, &journal.Post{}); err != nil {
		log.Fatal("migrate failed:", err)
	}

	// Cleanup old data (posts first, they reference days)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM post")
	db.Exec("DELETE FROM day")

	svc := journal.NewService(journal.NewRepository(db), logger.NewNop())
	ctx := context.Background()

	// ================== DAYS ==================
	// The first week is created explicitly, the second implicitly by its posts.
	start := time.Now().AddDate(0, 0, -14)
	for i := 0; i < 7; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		rating := 0.0
		if _, err := svc.CreateDay(ctx, journal.CreateDayRequest{Date: &date, OverallRating: &rating}); err != nil {
			log.Fatal("create day failed:", err)
		}
	}

	// ================== POSTS ==================
	log.Println("Creating posts...")
	total := 0
	for i := 0; i < 14; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		for j := 0; j < 1+rand.Intn(3); j++ {
			location := locations[rand.Intn(len(locations))]
			rating := float64(1 + rand.Intn(5))
			text := fmt.Sprintf("Entry %d for %s", j+1, date)
			pic := ""
			if _, err := svc.CreatePost(ctx, journal.CreatePostRequest{
				Location: &location,
				Rating:   &rating,
				Text:     &text,
				Pic:      &pic,
				DateStr:  &date,
			}); err != nil {
				log.Fatal("create post failed:", err)
			}
			total++
		}
	}

	log.Printf("Seed completed: 14 days, %d posts", total)
}
