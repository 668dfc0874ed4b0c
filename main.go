package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/deployhub/deployhub-backend/internal/logger"
	"github.com/deployhub/deployhub-backend/pkg/api/routes"
	"github.com/deployhub/deployhub-backend/pkg/api/servers"
	"github.com/deployhub/deployhub-backend/pkg/cloud/aws"
	"github.com/deployhub/deployhub-backend/pkg/infrastructure/postgres/connection"
	postgresRepositories "github.com/deployhub/deployhub-backend/pkg/infrastructure/postgres/repositories"
	"github.com/deployhub/deployhub-backend/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const credentialSweepInterval = time.Minute

func main() {

	logger.Init()

	// Load .env file if it exists (optional for Docker runtime)
	if err := godotenv.Load(".env"); err != nil {
		logger.Infof("No .env file found, using environment variables: %s", err)
	}

	port := os.Getenv("PORT")

	if port == "" {
		port = "8000"
	}

	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}

	allowedOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		allowedOrigins = strings.Split(origins, ",")
	}

	postgresUser := os.Getenv("POSTGRES_USER")
	postgresHost := os.Getenv("POSTGRES_HOST")
	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	postgresDatabase := os.Getenv("POSTGRES_DB")
	postgresPort := os.Getenv("POSTGRES_PORT")

	postgresDB, err := connection.Init(
		postgresUser,
		postgresHost,
		postgresPassword,
		postgresDatabase,
		postgresPort,
	)
	if err != nil {
		logger.Fatal("Failed to connect to postgres", zap.Error(err))
	}

	identity, err := aws.NewIdentityBroker(context.Background(), region)
	if err != nil {
		logger.Fatal("Failed to initialize STS client", zap.Error(err))
	}

	connectionRepo := postgresRepositories.NewConnectionRepository(postgresDB)
	broker := services.NewCredentialBroker(identity, connectionRepo)
	broker.StartExpiryWatch(credentialSweepInterval)
	defer broker.Stop()

	server := servers.NewServer(postgresDB, broker, allowedOrigins)
	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"*"}

	server.Use(cors.New(config))

	routes.SetupRoutes(server)

	err = server.Start(port)
	if err != nil {
		logger.Error("Failed to start server", zap.Error(err))
		log.Fatal(err)
	}
}
