package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/benbeisheim/randchess/internal/config"
	"github.com/benbeisheim/randchess/internal/console"
	"github.com/benbeisheim/randchess/internal/model"
	"github.com/benbeisheim/randchess/internal/store"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

func main() {
	if err := run(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromOS()
	if err != nil {
		return err
	}
	// Keep the board readable unless asked for more
	if cfg.LogLevel == config.Default().LogLevel {
		cfg.LogLevel = "warn"
	}
	level, _ := cfg.Level()
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	seed := cfg.ResolveSeed()
	log.Infof("opponent seed %d", seed)
	game := model.NewGame(uuid.New().String(), rand.New(rand.NewSource(seed)))

	res, err := console.NewSession(game, os.Stdin, os.Stdout).Run()
	if err != nil {
		return err
	}
	if res == nil || cfg.DataDir == "" {
		return nil
	}

	archive, err := store.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer archive.Close()

	rec, err := store.NewGameRecord(game, "")
	if err != nil {
		return err
	}
	if err := archive.SaveGame(rec); err != nil {
		return fmt.Errorf("archive game: %w", err)
	}
	stats, err := archive.LoadStats()
	if err != nil {
		return err
	}
	fmt.Printf("Games played: %d, you won %d, the computer won %d.\n", stats.GamesPlayed, stats.HumanWins, stats.AutoWins)
	return nil
}
