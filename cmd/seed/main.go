// Seeds a demo question block so a host can start a game right away.
package main

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizlive/config"
	"quizlive/internal/model"
	"quizlive/internal/repository"
)

func main() {
	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer client.Disconnect(ctx)

	blockRepo := repository.NewBlockRepo(client.Database(cfg.MongoDatabase))

	block := &model.Block{
		Name:        "General Knowledge",
		Description: "Demo block for local development",
		OwnerID:     "host_seed",
		Questions: []model.Question{
			{
				ID:                 "q1",
				Statement:          "Which planet is closest to the sun?",
				Options:            []string{"Venus", "Mercury", "Mars", "Earth"},
				CorrectOptionIndex: 1,
			},
			{
				ID:                 "q2",
				Statement:          "What is the capital of Australia?",
				Options:            []string{"Sydney", "Melbourne", "Canberra", "Perth"},
				CorrectOptionIndex: 2,
			},
			{
				ID:                 "q3",
				Statement:          "How many continents are there?",
				Options:            []string{"5", "6", "7", "8"},
				CorrectOptionIndex: 2,
			},
		},
	}

	if err := blockRepo.Create(ctx, block); err != nil {
		log.Fatal("Failed to seed block:", err)
	}
	log.Printf("Seeded block %s with %d questions", block.ID, len(block.Questions))
}
