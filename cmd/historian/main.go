// cmd/historian/main.go runs the asynchronous worker that drains resolved
// matches from the Redis queue into Postgres and flags stale waiting rooms.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/codebattle/arena/internal/cache"
	"github.com/codebattle/arena/internal/database"
	"github.com/codebattle/arena/internal/historian"
)

func main() {
	database.ConnectDB()
	if err := cache.ConnectRedis(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	logger := logrus.New()

	svc := historian.New(historian.Config{
		Redis:  cache.Rdb,
		Flush:  database.InsertHistoryEntries,
		Sweep:  database.MarkStaleWaitingRooms,
		Logger: logger,
	})
	go svc.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	svc.Stop()
	logger.Info("historian shutdown complete")
}
