// migrate applies, inspects and creates LexDesk schema migrations. The
// SQL files are embedded, so the binary needs only database settings
// (LEX_DATABASE_*) to run.
package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/lexdesk/backend/internal/infrastructure/config"
	"github.com/lexdesk/backend/internal/infrastructure/logger"
	"github.com/lexdesk/backend/internal/infrastructure/migration"
	"github.com/lexdesk/backend/migrations"
)

const usage = `LexDesk database migrations

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (negative rolls back)
  version               Show the current version
  force <version>       Set the version after fixing a dirty state by hand
  create <name> [desc]  Write a new up/down pair into --dir
  list                  List embedded migrations

Flags:
`

var errUsage = errors.New("invalid usage")

func main() {
	if err := run(os.Args[1:]); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(argv []string) error {
	flags := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	dir := flags.String("dir", "migrations", "directory new migrations are written to")
	logLevel := flags.String("log-level", "info", "debug, info, warn or error")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	if err := flags.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	args := flags.Args()
	if len(args) == 0 {
		flags.Usage()
		return errUsage
	}

	log, err := logger.New(&logger.Config{Level: *logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync(log) }()

	switch args[0] {
	case "create":
		return create(log, *dir, args[1:])
	case "list":
		names, err := migration.ListMigrations(migrations.FS)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println("  -", name)
		}
		return nil
	}

	m, closeDB, err := openMigrator(log)
	if err != nil {
		return err
	}
	defer closeDB()

	switch args[0] {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "step":
		n, err := intArg(args, "step <n>")
		if err != nil {
			return err
		}
		return m.Steps(n)
	case "force":
		v, err := intArg(args, "force <version>")
		if err != nil {
			return err
		}
		return m.Force(v)
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	}
	log.Error("Unknown command", zap.String("command", args[0]))
	flags.Usage()
	return errUsage
}

func create(log *zap.Logger, dir string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: migrate create <name> [description]", errUsage)
	}
	var description string
	if len(args) > 1 {
		description = args[1]
	}
	mf, err := migration.CreateMigration(dir, args[0], description)
	if err != nil {
		return err
	}
	log.Info("Migration created",
		zap.String("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath))
	return nil
}

func openMigrator(log *zap.Logger) (*migration.Migrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	m, err := migration.New(db, migrations.FS, log)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	// Close releases db as well
	return m, func() { _ = m.Close() }, nil
}

func intArg(args []string, form string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%w: migrate %s", errUsage, form)
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", errUsage, args[1])
	}
	return n, nil
}
