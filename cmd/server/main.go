package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizlive/config"
	"quizlive/internal/cache"
	"quizlive/internal/engine"
	"quizlive/internal/repository"
	"quizlive/internal/service"
	"quizlive/internal/transport/rest"
	"quizlive/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDatabase)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Repositories
	blockRepo := repository.NewBlockRepo(db)
	roomRepo := repository.NewRoomRepo(db)
	playerRepo := repository.NewPlayerRepo(db)
	answerRepo := repository.NewAnswerRepo(db)

	// Caches
	roomCache := cache.NewRoomCache(rdb)
	leaderboard := cache.NewLeaderboardCache(rdb)

	// Live session engine
	eng := engine.New()
	eng.SetWindowClosedHook(func(code string) {
		wsHub.BroadcastToAllPlayers(code, string(ws.MsgQuestionClosed), map[string]string{"roomCode": code})
		wsHub.BroadcastToHost(code, string(ws.MsgQuestionClosed), map[string]string{"roomCode": code})
	})

	// Services
	authSvc := service.NewAuthService(cfg)
	blockSvc := service.NewBlockService(blockRepo)
	gameSvc := service.NewGameService(cfg, roomRepo, blockRepo, playerRepo, answerRepo, roomCache, leaderboard, eng, authSvc)
	gameSvc.SetBroadcaster(wsHub)

	container := &rest.Container{
		AuthService:  authSvc,
		BlockService: blockSvc,
		GameService:  gameSvc,
		WSHub:        wsHub,
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST/GET /v1/blocks")
		log.Println("  POST /v1/rooms")
		log.Println("  POST /v1/rooms/{code}/join")
		log.Println("  POST /v1/rooms/{code}/start|next|end")
		log.Println("  POST /v1/rooms/{code}/answers")
		log.Println("  GET  /v1/rooms/{code}/ranking")
		log.Println("  GET  /v1/rooms/{code}/leaderboard")
		log.Println("  DELETE /v1/rooms/{code}")
		log.Println("  WS   /v1/ws/rooms/{code}/host")
		log.Println("  WS   /v1/ws/rooms/{code}/player")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
