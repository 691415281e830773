// Command migrate applies or rolls back the embedded database schema.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/hireline/hireline/internal/repository"
)

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		command     = flag.String("command", "up", "Migration command: up, down, steps or version")
		steps       = flag.Int("steps", 1, "Number of steps for the steps command (negative rolls back)")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	if err := run(*databaseURL, *command, *steps); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(databaseURL, command string, steps int) error {
	if command == "up" {
		if err := repository.RunMigrations(databaseURL); err != nil {
			return err
		}
		fmt.Println("migrations applied")
		return nil
	}

	m, err := repository.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	switch command {
	case "down":
		err = m.Down()
	case "steps":
		err = m.Steps(steps)
	case "version":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			fmt.Println("no migrations applied")
			return nil
		}
		if verr != nil {
			return fmt.Errorf("read version: %w", verr)
		}
		fmt.Printf("version %d (dirty=%t)\n", version, dirty)
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: %w", command, err)
	}
	fmt.Printf("%s complete\n", command)
	return nil
}
