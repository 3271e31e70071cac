package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"

	"github.com/skillswap/skillswap-api/internal/config"
	"github.com/skillswap/skillswap-api/internal/pkg/logger"
)

const usage = `Usage: migrate <command>

Commands:
  up         Apply all pending migrations
  down       Roll back the last migration
  status     Print migration status
  version    Print current migration version
  create     Create a new migration file (requires -name)
`

func main() {
	name := flag.String("name", "", "name for a new migration")
	dir := flag.String("dir", "migrations", "directory with migration files")
	flag.Parse()

	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	if flag.NArg() < 1 {
		fmt.Print(usage)
		os.Exit(1)
	}
	command := flag.Arg(0)

	if command == "create" {
		if *name == "" {
			log.Fatal().Msg("create requires -name")
		}
		if err := goose.Create(nil, *dir, *name, "sql"); err != nil {
			log.Fatal().Err(err).Msg("Failed to create migration")
		}
		return
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal().Err(err).Msg("Failed to set dialect")
	}

	switch command {
	case "up":
		err = goose.Up(db, *dir)
	case "down":
		err = goose.Down(db, *dir)
	case "status":
		err = goose.Status(db, *dir)
	case "version":
		err = goose.Version(db, *dir)
	default:
		fmt.Print(usage)
		os.Exit(1)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("Migration failed")
	}

	log.Info().Str("command", command).Msg("Migration complete")
}
