// @title Study Mentor API
// @version 1.0
// @description Backend for an AI study mentor: onboarding, roadmaps, daily tasks and progress.

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"log"

	"study_mentor_backend/internal/app"
	"study_mentor_backend/internal/config"
	"study_mentor_backend/pkg/configwatcher"
	"study_mentor_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	go configwatcher.WatchConfig("configs/config.yaml", application.ApplyConfig)

	application.Run()
}
