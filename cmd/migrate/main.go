// Comando migrate aplica o revierte el esquema de la base de datos.
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate down
//	go run ./cmd/migrate version
package main

import (
	"fmt"
	"os"

	"github.com/jhoicas/Mayorista-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Mayorista-api/pkg/config"
	"github.com/jhoicas/Mayorista-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	if err := run(cmd, cfg.DB.ConnectionString(), log); err != nil {
		log.Error().Err(err).Str("cmd", cmd).Msg("migración fallida")
		os.Exit(1)
	}
}

func run(cmd, databaseURL string, log *logger.Logger) error {
	m, err := postgres.NewMigrator(databaseURL, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar migrador")
		}
	}()

	switch cmd {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", v, dirty)
		return nil
	}
	return fmt.Errorf("comando desconocido %q (up | down | version)", cmd)
}
