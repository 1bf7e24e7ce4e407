package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/taskpilot-dev/taskpilot/db"
	"github.com/taskpilot-dev/taskpilot/internal/auth"
	"github.com/taskpilot-dev/taskpilot/internal/logger"
	"github.com/taskpilot-dev/taskpilot/internal/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	if err := logger.Init(); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	defer logger.Sync()

	if err := auth.InitJWTSecret(); err != nil {
		logger.Log.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	conn, err := db.Connect(os.Getenv("DATABASE_URL"))

	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.Migrate(conn); err != nil {
		logger.Log.Fatalf("Failed to migrate database: %v", err)
	}

	r := router.NewRouter(conn)

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		logger.Log.Info("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
