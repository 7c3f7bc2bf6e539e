package main

import (
	"log"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/config"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/database"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/repositories"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/services"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewConnection(database.Config{Path: cfg.Database.Path})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ticketRepo := repositories.NewTicketRepository(db.DB)
	emailService := services.NewEmailService(cfg.Resend)
	processor := tasks.NewTicketEmailProcessor(ticketRepo, emailService, cfg.Conference.Tag)

	srv, mux := tasks.NewServer(cfg.Redis, processor)

	log.Printf("Worker listening on queue %q (redis %s)", tasks.QueueEmails, cfg.Redis.Addr)
	if err := srv.Run(mux); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
}
