package main

import (
	"context"
	"log"

	"gopitch/internal/config"
	"gopitch/internal/container"
	"gopitch/internal/errors"
	"gopitch/internal/migration"
	"gopitch/ui"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase connects to PostgreSQL and brings the schema up to date
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(context.Background(), db); err != nil {
		return nil, errors.Wrap(err, "database migration failed")
	}

	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	db, err := initDatabase(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	c, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create container: %v", err)
	}
	if err := c.InitWithDatabase(db); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer c.Shutdown(context.Background())

	ops := ui.NewOpsServer(db, c.Sessions, c.Logger)
	go func() {
		if err := ops.Start(":" + appConfig.Server.OpsPort); err != nil {
			c.Logger.Error("ops server stopped: %v", err)
		}
	}()

	server := ui.NewServer(ui.Deps{
		Users:       c.UserRepo,
		Pitches:     c.PitchRepo,
		Auth:        c.Auth,
		Files:       c.Files,
		Sessions:    c.Sessions,
		Transcriber: c.Transcriber,
		Analyzer:    c.Analyzer,
		Investor:    c.Investor,
		Logger:      c.Logger,
	})

	c.Logger.Info("pitch coaching API listening on :%s", appConfig.Server.Port)
	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
