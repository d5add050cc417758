// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/codebattle/arena/internal/arena"
	"github.com/codebattle/arena/internal/auth"
	"github.com/codebattle/arena/internal/cache"
	"github.com/codebattle/arena/internal/database"
	"github.com/codebattle/arena/internal/handlers"
	"github.com/codebattle/arena/internal/middleware"
)

func main() {
	auth.Init()
	database.ConnectDB()
	if err := cache.ConnectRedis(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	engine := arena.New(arena.Config{
		Wallet:  database.Wallet{},
		Catalog: database.Catalog{},
		Grader:  arena.HeuristicGrader{},
		Ranks:   database.Ranks{},
		Seasons: database.Seasons{},
		History: cache.HistoryQueue{},
		Users:   database.Users{},
		Rooms:   database.Rooms{},
		Events:  cache.Publisher{},
		Logger:  logger,
	})
	srv := handlers.NewArenaServer(engine, database.History{}, logger)
	srv.Guests = database.Guests{}
	srv.Rooms = database.Rooms{}

	logged := middleware.LogMiddleware(logger)
	mux := http.NewServeMux()

	// user endpoints
	mux.HandleFunc("/user/create", handlers.CreateUserHandler)
	mux.HandleFunc("/user/login", handlers.LoginHandler)
	mux.HandleFunc("/user/claim", handlers.ClaimEphemeralHandler)

	// room endpoints
	mux.Handle("/room/create", logged(handlers.CreateRoomHandler(srv)))
	mux.Handle("/room/quick", logged(handlers.QuickMatchHandler(srv)))
	mux.Handle("/room/join", logged(handlers.JoinRoomHandler(srv)))
	mux.Handle("/room/code", logged(handlers.JoinByCodeHandler(srv)))
	mux.Handle("/room/submit", logged(handlers.SubmitHandler(srv)))
	mux.Handle("/room/get", logged(handlers.GetRoomHandler(srv)))
	mux.Handle("/room/list", logged(handlers.ListRoomsHandler(srv)))

	// room event stream
	mux.Handle("/room/ws/", logged(handlers.RoomWSHandler(logger, srv)))

	// ladder and history
	mux.Handle("/rank/me", logged(handlers.RankMeHandler(srv)))
	mux.Handle("/history/me", logged(handlers.HistoryMeHandler(srv)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
