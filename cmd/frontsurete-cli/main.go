package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/ousseynou98/frontsurete-sub001/config"
	"github.com/ousseynou98/frontsurete-sub001/internal/adapters/filestore"
	"github.com/ousseynou98/frontsurete-sub001/internal/bootstrap"
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
	// StoragePath is the JSON file holding this terminal's session.
	StoragePath string
	Stdin       io.Reader
	Stdout      io.Writer
}

const storagePathEnv = "FRONTSURETE_CLI_STORAGE"

func main() {
	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			slog.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			slog.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stderr); err != nil {
			slog.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}
	// Keep stdout for command output; logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Observability.Level()}))

	storagePath, err := resolveStoragePath()
	if err != nil {
		logger.Error("resolve storage path", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:         context.Background(),
		Logger:      logger,
		Config:      cfg,
		StoragePath: storagePath,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func resolveStoragePath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(storagePathEnv)); p != "" {
		return p, nil
	}
	return filestore.DefaultPath()
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Sign in and keep the session in local storage",
			run:         runLogin,
		},
		"whoami": {
			name:        "whoami",
			description: "Show the current session and identity",
			run:         runWhoami,
		},
		"logout": {
			name:        "logout",
			description: "Forget the local session",
			run:         runLogout,
		},
		"get": {
			name:        "get",
			description: "GET an API path with the current session and print the JSON body",
			run:         runGet,
		},
		"list-clients": {
			name:        "list-clients",
			description: "List browser client namespaces held in Redis",
			run:         runListClients,
		},
		"clear-client": {
			name:        "clear-client",
			description: "Sign out one browser client by clearing its Redis namespace",
			run:         runClearClient,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: frontsurete-cli <command> [flags]\n\n"); err != nil {
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
		if err := writef(w, "  %-16s %s\n", name, cmds[name].description); err != nil {
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
