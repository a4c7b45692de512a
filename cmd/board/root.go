// ABOUTME: Root Cobra command and global flags for the board CLI.
// ABOUTME: Sets up lifecycle hooks for config loading and service wiring.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/j0chan/sesac-semi/internal/api"
	"github.com/j0chan/sesac-semi/internal/config"
	"github.com/j0chan/sesac-semi/internal/posts"
	"github.com/j0chan/sesac-semi/internal/session"
	"github.com/j0chan/sesac-semi/internal/tui"
	"github.com/j0chan/sesac-semi/internal/uploads"
)

var globalConfig *config.Config
var globalLogger zerolog.Logger
var globalSession *session.Service
var globalPosts *posts.Repository
var globalUploads *uploads.Service

var flagVerbose bool

var rootCmd = &cobra.Command{
	Use:   "board",
	Short: "Client for the team publishing board",
	Long: `
██████╗  ██████╗  █████╗ ██████╗ ██████╗
██╔══██╗██╔═══██╗██╔══██╗██╔══██╗██╔══██╗
██████╔╝██║   ██║███████║██████╔╝██║  ██║
██╔══██╗██║   ██║██╔══██║██╔══██╗██║  ██║
██████╔╝╚██████╔╝██║  ██║██║  ██║██████╔╝
╚═════╝  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝

Read, write, and browse the team publishing board from the terminal.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "setup" {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if !cfg.HasAPI() {
			cfg.API.BaseURL = tui.DefaultBaseURL
		}
		globalConfig = cfg

		logger, err := buildLogger(cfg, cmd.Name())
		if err != nil {
			return err
		}
		globalLogger = logger

		tokenPath, err := config.GetTokenPath()
		if err != nil {
			return fmt.Errorf("failed to resolve token path: %w", err)
		}
		store := session.NewStore(tokenPath)

		timeout := time.Duration(cfg.API.TimeoutSeconds) * time.Second
		client := api.New(cfg.API.BaseURL, timeout, store, logger)

		globalSession = session.NewService(client, store)
		globalPosts = posts.NewRepository(client)
		globalUploads = uploads.NewService(client, timeout, cfg.Uploads.MaxBytes, cfg.Uploads.AllowedTypePrefix)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// buildLogger constructs the process logger. While a bubbletea program owns
// the terminal, logs go to the configured file or nowhere.
func buildLogger(cfg *config.Config, command string) (zerolog.Logger, error) {
	level := zerolog.WarnLevel
	if cfg.Log.Level != "" {
		parsed, err := zerolog.ParseLevel(cfg.Log.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
		}
		level = parsed
	}
	if flagVerbose {
		level = zerolog.DebugLevel
	}

	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if command == "browse" {
		logFile, err := cfg.GetLogFile()
		if err != nil {
			return zerolog.Nop(), err
		}
		if logFile == "" {
			w = io.Discard
		} else {
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
			if err != nil {
				return zerolog.Nop(), fmt.Errorf("failed to open log file: %w", err)
			}
			w = f
		}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
