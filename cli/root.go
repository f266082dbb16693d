// Package cli is the mailpanel command tree: the interactive panel and the
// headless sync, list, draft, send and ping commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/bassamadnan/mailpanel/assistant"
	"github.com/bassamadnan/mailpanel/config"
	"github.com/bassamadnan/mailpanel/panel"
)

// env is the state shared by one command tree invocation.
type env struct {
	cfgFile string
	verbose bool

	cfgManager *config.Manager
	logger     *slog.Logger
	logFile    io.Closer

	// isTerminal reports whether fd is an interactive terminal.
	isTerminal func(fd uintptr) bool
}

func defaultIsTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// flagKeys maps global flags to the config keys they override.
var flagKeys = map[string]string{
	"api-url": "api.base_url",
	"token":   "api.token",
	"timeout": "api.timeout_sec",
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "mailpanel",
		Short: "Terminal panel for an email assistant backend",
		Long: `mailpanel lists classified emails from an email-assistant backend,
generates reply drafts in a chosen tone and sends them.

Run without a subcommand to open the interactive panel. The sync, list,
draft, send and ping commands work without a terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPanel(cmd, e)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&e.cfgFile, "config", "", "config file (default $MAILPANEL_HOME/config.toml or ~/.config/mailpanel/config.toml)")
	pf.String("api-url", "", "backend base URL")
	pf.String("token", "", "bearer token sent to the backend")
	pf.Int("timeout", 0, "request timeout in seconds")
	pf.BoolVarP(&e.verbose, "verbose", "v", false, "enable debug logging")
	root.Flags().String("ui", "", "front-end: tea or classic")

	root.AddCommand(
		newTUICmd(e),
		newSyncCmd(e),
		newListCmd(e),
		newDraftCmd(e),
		newSendCmd(e),
		newPingCmd(e),
	)
	return root
}

// ExecuteContext runs the command tree with the given context,
// enabling graceful shutdown when the context is cancelled.
func ExecuteContext(ctx context.Context) error {
	e := &env{isTerminal: defaultIsTerminal}
	defer e.close()
	return newRootCmd(e).ExecuteContext(ctx)
}

// interactive reports whether cmd opens the panel.
func interactive(cmd *cobra.Command) bool {
	return cmd.Name() == "tui" || !cmd.HasParent()
}

// setup loads the configuration and installs the logger.
func (e *env) setup(cmd *cobra.Command) error {
	mgr, err := config.NewManager(e.cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Root().PersistentFlags()
	for name, key := range flagKeys {
		if err := mgr.BindFlag(key, flags.Lookup(name)); err != nil {
			return err
		}
	}
	if ui := cmd.Flags().Lookup("ui"); ui != nil {
		if err := mgr.BindFlag("ui.mode", ui); err != nil {
			return err
		}
	}
	if err := mgr.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	e.cfgManager = mgr

	level := slog.LevelInfo
	if e.verbose {
		level = slog.LevelDebug
	}
	var w io.Writer = cmd.ErrOrStderr()
	if interactive(cmd) {
		f, err := openLogFile(mgr.Get().UI.LogFile)
		if err != nil {
			return err
		}
		e.logFile = f
		w = f
	}
	e.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(e.logger)
	e.logger.Debug("config loaded", "path", mgr.Path(), "command", cmd.Name())
	return nil
}

func (e *env) close() {
	if e.logFile != nil {
		e.logFile.Close()
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// newClient builds a backend client from the effective settings.
func (e *env) newClient() (*assistant.Client, error) {
	s := e.cfgManager.Get()
	return assistant.New(assistant.Config{
		BaseURL: s.API.BaseURL,
		Token:   s.API.Token,
		Timeout: s.API.Timeout(),
	}, assistant.WithLogger(e.logger))
}

// newController wires a client into a panel controller with the configured
// draft defaults.
func (e *env) newController() (*panel.Controller, *assistant.Client, error) {
	client, err := e.newClient()
	if err != nil {
		return nil, nil, err
	}
	s := e.cfgManager.Get()
	defaults := panel.DraftOptions{Tone: s.Draft.Tone, ExtraInstructions: s.Draft.ExtraInstructions}
	return panel.NewController(client, defaults, e.logger), client, nil
}
