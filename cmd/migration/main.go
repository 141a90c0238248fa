package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/riskibarqy/f1-draft/internal/app"
	"github.com/riskibarqy/f1-draft/internal/config"
	"github.com/riskibarqy/f1-draft/internal/platform/logging"
)

var errUsage = errors.New("usage")

// migrator is the subset of *migrate.Migrate the commands drive.
type migrator interface {
	Up() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(version int) error
	Migrate(version uint) error
}

type command struct {
	name    string
	steps   int
	version int
	target  uint
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.New(logging.Options{
		Level:   logging.ParseLevel(os.Getenv("APP_LOG_LEVEL")),
		Format:  logging.FormatConsole,
		Service: "f1-draft-migration",
	})
	defer logger.Sync()

	cmd, err := parseCommand(os.Args[1:])
	if err != nil {
		printUsage()
		if !errors.Is(err, errUsage) {
			logger.Error("invalid arguments", "error", err)
		}
		os.Exit(2)
	}

	if err := run(cmd, logger); err != nil {
		logger.Error("migration failed", "command", cmd.name, "error", err)
		os.Exit(1)
	}
}

func run(cmd command, logger *logging.Logger) error {
	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		return fmt.Errorf("DB_URL is required")
	}
	disableBinary, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv("DB_DISABLE_PREPARED_BINARY_RESULT")))

	dir, err := migrationsDir()
	if err != nil {
		return err
	}
	source := "file://" + filepath.ToSlash(dir)

	m, err := migrate.New(source, app.PostgresDSN(dbURL, disableBinary))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warn("close migrator", "source_error", srcErr, "db_error", dbErr)
		}
	}()

	return apply(m, cmd, logger.With("source", source))
}

func apply(m migrator, cmd command, logger *logging.Logger) error {
	var err error
	switch cmd.name {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-cmd.steps)
	case "goto":
		err = m.Migrate(cmd.target)
	case "force":
		if err := m.Force(cmd.version); err != nil {
			return fmt.Errorf("force version %d: %w", cmd.version, err)
		}
		logger.Info("version forced", "version", cmd.version)
		return nil
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info("no migration applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		logger.Info("current version", "version", version, "dirty", dirty)
		return nil
	default:
		return errUsage
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes", "command", cmd.name)
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("migration complete", "command", cmd.name, "steps", cmd.steps, "target", cmd.target)
	return nil
}

func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, errUsage
	}
	cmd := command{name: strings.ToLower(strings.TrimSpace(args[0]))}
	rest := args[1:]

	switch cmd.name {
	case "up", "version":
		return cmd, nil
	case "down":
		cmd.steps = 1
		if len(rest) > 0 {
			steps, err := strconv.Atoi(strings.TrimSpace(rest[0]))
			if err != nil || steps <= 0 {
				return command{}, fmt.Errorf("down steps must be a positive integer, got %q", rest[0])
			}
			cmd.steps = steps
		}
		return cmd, nil
	case "force":
		if len(rest) == 0 {
			return command{}, fmt.Errorf("force requires a version")
		}
		version, err := strconv.Atoi(strings.TrimSpace(rest[0]))
		if err != nil || version < -1 {
			return command{}, fmt.Errorf("invalid version %q", rest[0])
		}
		cmd.version = version
		return cmd, nil
	case "goto", "migrate":
		if len(rest) == 0 {
			return command{}, fmt.Errorf("goto requires a target version")
		}
		target, err := strconv.ParseUint(strings.TrimSpace(rest[0]), 10, 64)
		if err != nil {
			return command{}, fmt.Errorf("invalid target version %q", rest[0])
		}
		cmd.name = "goto"
		cmd.target = uint(target)
		return cmd, nil
	default:
		return command{}, errUsage
	}
}

func migrationsDir() (string, error) {
	candidates := []string{
		os.Getenv("MIGRATIONS_DIR"),
		"./db/migrations",
		"/app/db/migrations",
	}
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}
	return "", fmt.Errorf("migrations directory not found (checked MIGRATIONS_DIR, ./db/migrations, /app/db/migrations)")
}

func printUsage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <up|down [n]|version|force <v>|goto <v>>\n", name)
}
