package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/benbeisheim/randchess/internal/config"
	"github.com/benbeisheim/randchess/internal/controller"
	"github.com/benbeisheim/randchess/internal/service"
	"github.com/benbeisheim/randchess/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg, err := config.FromOS()
	if err != nil {
		log.Fatal(err)
	}
	level, _ := cfg.Level()
	log.SetLevel(level)

	// The archive is optional
	var archive service.Archive
	if cfg.DataDir != "" {
		a, err := store.Open(cfg.DataDir)
		if err != nil {
			log.Fatal(err)
		}
		defer a.Close()
		archive = a
	}

	// Seeded once for the whole process
	seed := cfg.ResolveSeed()
	log.Infof("opponent seed %d", seed)

	// Initialize services
	gameManager := service.NewGameManager(seed, archive)
	gameService := service.NewGameService(gameManager)

	app := fiber.New(fiber.Config{AppName: "randchess"})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))

	controller.RegisterRoutes(app, gameService)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	if err := app.Listen(cfg.Addr); err != nil {
		log.Errorf("listen: %v", err)
	}
}
