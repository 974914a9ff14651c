// Command migrate applies the link-tracker schema migrations.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	infraconfig "github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/config"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/config"
)

const (
	exitSuccess = 0
	exitFailure = 1
)

// defaultMigrationsPath is used unless MIGRATIONS_PATH is set.
const defaultMigrationsPath = "file://migrations"

const usage = "Usage: migrate <up|down|version|steps N>"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		return exitFailure
	}

	command := args[0]
	steps := 0
	switch command {
	case "up", "down", "version":
	case "steps":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, usage)
			return exitFailure
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || n == 0 {
			fmt.Fprintf(os.Stderr, "Invalid step count: %q\n", args[1])
			return exitFailure
		}
		steps = n
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %q\n%s\n", command, usage)
		return exitFailure
	}

	configPath := infraconfig.GetConfigPath("config.yml")
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return exitFailure
	}

	source := defaultMigrationsPath
	if p := os.Getenv("MIGRATIONS_PATH"); p != "" {
		source = p
	}

	m, err := migrate.New(source, cfg.Database.URL())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create migrate instance: %v\n", err)
		return exitFailure
	}
	defer func() { _, _ = m.Close() }()

	if command == "version" {
		return printVersion(m)
	}

	if err := runMigration(m, command, steps); err != nil {
		fmt.Fprintf(os.Stderr, "Migration %s failed: %v\n", command, err)
		return exitFailure
	}

	fmt.Printf("Migration %s completed successfully\n", command)
	return exitSuccess
}

func printVersion(m *migrate.Migrate) int {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("No migrations applied")
		return exitSuccess
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read version: %v\n", err)
		return exitFailure
	}
	fmt.Printf("Version %d (dirty: %t)\n", version, dirty)
	return exitSuccess
}

func runMigration(m *migrate.Migrate, command string, steps int) error {
	var err error

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		err = m.Steps(steps)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("No migrations to apply")
		return nil
	}

	return err
}
