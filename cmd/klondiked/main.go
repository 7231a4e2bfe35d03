package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Cwarren15-A/Ultimate-Solitaire/internal/advisory"
	"github.com/Cwarren15-A/Ultimate-Solitaire/internal/session"
	"github.com/Cwarren15-A/Ultimate-Solitaire/internal/stats"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(lvl)
	}

	dbPath := os.Getenv("KLONDIKED_DB")
	if dbPath == "" {
		dbPath = "./data/klondike.db"
	}
	store, err := stats.Open(dbPath)
	if err != nil {
		log.WithError(err).Fatal("failed to open stats database")
	}
	defer store.Close()

	mgr := session.NewManager(log)
	mgr.OnGameEnd = func(id uuid.UUID, sum session.Summary) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := store.Record(ctx, stats.Summary{
			Won:       sum.Won,
			Moves:     sum.Moves,
			ElapsedMs: sum.ElapsedMs,
			DrawMode:  sum.DrawMode,
		})
		if err != nil {
			log.WithError(err).WithField("game", id).Error("failed to record game")
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	srv := advisory.New(mgr, store, log)
	log.WithFields(logrus.Fields{"addr": addr, "db": dbPath}).Info("klondiked listening")
	if err := srv.Start(addr); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
