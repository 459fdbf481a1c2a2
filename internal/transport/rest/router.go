package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"quizlive/internal/service"
	"quizlive/internal/transport/rest/handler"
	"quizlive/internal/transport/rest/middleware"
	"quizlive/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService  *service.AuthService
	BlockService *service.BlockService
	GameService  *service.GameService
	WSHub        *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(c.AuthService)
	blockHandler := handler.NewBlockHandler(c.BlockService)
	roomHandler := handler.NewRoomHandler(c.GameService)
	playerHandler := handler.NewPlayerHandler(c.GameService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(corsMiddleware)

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/join", playerHandler.Join).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/ranking", roomHandler.Ranking).Methods("GET", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/leaderboard", roomHandler.Leaderboard).Methods("GET", "OPTIONS")

	// WebSocket routes (token in query param)
	v1.HandleFunc("/ws/rooms/{code}/host", wsHandler.HostWS).Methods("GET")
	v1.HandleFunc("/ws/rooms/{code}/player", wsHandler.PlayerWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Host routes (require host auth)
	hostRoutes := v1.NewRoute().Subrouter()
	hostRoutes.Use(authMW.RequireHost)

	hostRoutes.HandleFunc("/blocks", blockHandler.Create).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/blocks", blockHandler.List).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/blocks/{blockId}", blockHandler.Get).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/blocks/{blockId}", blockHandler.Update).Methods("PUT", "OPTIONS")
	hostRoutes.HandleFunc("/blocks/{blockId}", blockHandler.Delete).Methods("DELETE", "OPTIONS")
	hostRoutes.HandleFunc("/rooms", roomHandler.Create).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/rooms/{code}/start", roomHandler.Start).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/rooms/{code}/next", roomHandler.Next).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/rooms/{code}/end", roomHandler.End).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/rooms/{code}/scores", roomHandler.Scores).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/rooms/{code}", roomHandler.Delete).Methods("DELETE", "OPTIONS")

	// Player routes (require player auth)
	playerRoutes := v1.NewRoute().Subrouter()
	playerRoutes.Use(authMW.RequirePlayer)

	playerRoutes.HandleFunc("/rooms/{code}/question/current", playerHandler.CurrentQuestion).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/rooms/{code}/answers", playerHandler.SubmitAnswer).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/rooms/{code}/answers/mine", playerHandler.MyAnswers).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/rooms/{code}/state", playerHandler.State).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
