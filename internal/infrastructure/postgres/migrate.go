package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jhoicas/Mayorista-api/migrations"
	"github.com/jhoicas/Mayorista-api/pkg/logger"
)

// Migrator aplica los scripts embebidos en migrations.FS con golang-migrate.
type Migrator struct {
	m   *migrate.Migrate
	log *logger.Logger
}

// NewMigrator abre el origen embebido y la BD indicada (postgres:// o postgresql://).
func NewMigrator(databaseURL string, log *logger.Logger) (*Migrator, error) {
	if log == nil {
		log = logger.Nop()
	}
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("abrir migraciones embebidas: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("crear migrador: %w", err)
	}
	return &Migrator{m: m, log: log.Component("migrate")}, nil
}

// Up aplica todas las migraciones pendientes.
func (m *Migrator) Up() error {
	err := m.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		m.log.Info().Msg("sin migraciones pendientes")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration up: %w", err)
	}
	version, dirty, err := m.m.Version()
	if err != nil {
		return fmt.Errorf("migration version: %w", err)
	}
	m.log.Info().Uint("version", version).Bool("dirty", dirty).Msg("migraciones aplicadas")
	return nil
}

// Down revierte todas las migraciones.
func (m *Migrator) Down() error {
	err := m.m.Down()
	if errors.Is(err, migrate.ErrNoChange) {
		m.log.Info().Msg("nada que revertir")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration down: %w", err)
	}
	m.log.Info().Msg("migraciones revertidas")
	return nil
}

// Version versión actual; 0 si la BD no tiene migraciones.
func (m *Migrator) Version() (uint, bool, error) {
	v, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// Close libera origen y conexión.
func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}

// migrateURL adapta el esquema del DSN al driver pgx/v5 de golang-migrate.
func migrateURL(dsn string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}
