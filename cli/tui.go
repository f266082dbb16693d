package cli

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bassamadnan/mailpanel/config"
	"github.com/bassamadnan/mailpanel/tui"
)

// errNoTerminal is returned when the panel is started without a terminal.
var errNoTerminal = errors.New("the interactive panel needs a terminal; use 'mailpanel list', 'sync', 'draft' or 'send' instead")

func newTUICmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive panel",
		Long: `Open the interactive email panel.

Keys: s sync, r reload, g generate draft, x send draft, t cycle tone,
i edit extra instructions, enter full view, ? help, q quit.

Examples:
  mailpanel tui
  mailpanel tui --ui classic`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPanel(cmd, e)
		},
	}
	cmd.Flags().String("ui", "", "front-end: tea or classic")
	return cmd
}

func runPanel(cmd *cobra.Command, e *env) error {
	if !e.isTerminal(os.Stdin.Fd()) || !e.isTerminal(os.Stdout.Fd()) {
		return errNoTerminal
	}

	controller, client, err := e.newController()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	mode := e.cfgManager.Get().UI.Mode
	e.logger.Info("starting panel", "ui", mode, "backend", client.BaseURL())

	if mode == config.UIModeClassic {
		app := tui.NewApp(ctx, controller, e.cfgManager, client.BaseURL())
		go func() {
			<-ctx.Done()
			app.Stop()
		}()
		if err := app.Run(); err != nil {
			return fmt.Errorf("run panel: %w", err)
		}
		return nil
	}

	p := tea.NewProgram(
		tui.NewModel(ctx, controller, e.cfgManager, client.BaseURL()),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run panel: %w", err)
	}
	e.logger.Info("panel stopped")
	return nil
}
