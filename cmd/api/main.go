package main

import (
	"context"
	"log"

	"cvpilot-backend/internal/bootstrap"
	"cvpilot-backend/internal/shared/config"
	"cvpilot-backend/internal/shared/server"
	"cvpilot-backend/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	if app.DB != nil {
		defer app.DB.Close()
		if err := db.RunMigrations(context.Background(), app.DB); err != nil {
			log.Fatalf("migrations error: %v", err)
		}
	}

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
