package main

import (
	"log/slog"
	"os"

	"workpulse/internal/app"
	"workpulse/internal/infrastructure"
)

func main() {
	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	runErr := application.Run()
	if err := infrastructure.CloseLogFile(); err != nil {
		slog.Error("Failed to close log file", slog.String("error", err.Error()))
	}
	if runErr != nil {
		slog.Error("Application error", slog.String("error", runErr.Error()))
		os.Exit(1)
	}
}
