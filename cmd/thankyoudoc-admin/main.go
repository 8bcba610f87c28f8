package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/thankyoudoc/thankyoudoc-api/config"
	"github.com/thankyoudoc/thankyoudoc-api/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
	In     io.Reader
}

func main() {
	logger := bootstrap.InitLogger(os.Getenv("LOG_LEVEL"))

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
		Out:    os.Stdout,
		In:     os.Stdin,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrations,
		},
		"migrate-status": {
			name:        "migrate-status",
			description: "List migrations not yet applied",
			run:         runMigrateStatus,
		},
		"grant-role": {
			name:        "grant-role",
			description: "Assign a role (user, moderator, admin) to a user",
			run:         runGrantRole,
		},
		"revoke-role": {
			name:        "revoke-role",
			description: "Remove a user's role record",
			run:         runRevokeRole,
		},
		"list-roles": {
			name:        "list-roles",
			description: "List role assignments",
			run:         runListRoles,
		},
		"quick-login-set": {
			name:        "quick-login-set",
			description: "Set the quick-login superadmin or admin flag for one client",
			run:         runQuickLoginSet,
		},
		"quick-login-clear": {
			name:        "quick-login-clear",
			description: "Clear both quick-login flags for one client",
			run:         runQuickLoginClear,
		},
		"quick-login-status": {
			name:        "quick-login-status",
			description: "Show the quick-login flags of one client",
			run:         runQuickLoginStatus,
		},
		"hash-password": {
			name:        "hash-password",
			description: "Print a bcrypt hash for a quick-login password read from stdin",
			run:         runHashPassword,
		},
		"sweep-once": {
			name:        "sweep-once",
			description: "Mark past booked appointments completed once and exit",
			run:         runSweepOnce,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: thankyoudoc-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-20s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
