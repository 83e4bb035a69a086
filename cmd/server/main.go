package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"surveyhub/internal/app"
	"surveyhub/internal/handlers"
	"surveyhub/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	logger.InitDefault(slog.LevelInfo)
	log := logger.New("main")

	application, err := app.New()
	if err != nil {
		log.Er("failed to initialize application", err)
		os.Exit(1)
	}
	defer application.Close()

	server := fiber.New(fiber.Config{
		AppName: "surveyhub",
	})
	server.Use(recover.New())

	if err := handlers.Router(server, application); err != nil {
		log.Er("failed to register routes", err)
		os.Exit(1)
	}

	go func() {
		addr := fmt.Sprintf(":%d", application.Config.ServerPort)
		if err := server.Listen(addr); err != nil {
			log.Er("server stopped", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := server.Shutdown(); err != nil {
		log.Er("failed to shut down server", err)
	}
}
