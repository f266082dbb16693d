package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/bassamadnan/mailpanel/assistant"
	"github.com/bassamadnan/mailpanel/panel"
)

func newSyncCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Ask the backend to fetch new mail, then list it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			controller, _, err := e.newController()
			if err != nil {
				return err
			}
			r := controller.TriggerSync(cmd.Context())
			if r.Err != nil {
				return r.Err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, r.Notice())

			lr := controller.LoadEmails(cmd.Context())
			if lr.Err != nil {
				return lr.Err
			}
			fmt.Fprintln(out)
			outputEmailsTable(out, lr.Emails)
			return nil
		},
	}
}

func newListCmd(e *env) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List emails known to the backend",
		Long: `List all emails the backend has synced, with their classification
and whether a draft exists.

Examples:
  mailpanel list
  mailpanel list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			controller, _, err := e.newController()
			if err != nil {
				return err
			}
			lr := controller.LoadEmails(cmd.Context())
			if lr.Err != nil {
				return lr.Err
			}
			if asJSON {
				return outputEmailsJSON(cmd.OutOrStdout(), lr.Emails)
			}
			outputEmailsTable(cmd.OutOrStdout(), lr.Emails)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newDraftCmd(e *env) *cobra.Command {
	var (
		tone         string
		instructions string
	)
	cmd := &cobra.Command{
		Use:   "draft <message-id>",
		Short: "Generate a reply draft for one email",
		Long: `Generate a reply draft for one email and print it.

The tone and extra instructions default to the configured values.

Examples:
  mailpanel draft 18c2f0a9
  mailpanel draft 18c2f0a9 --tone friendly --instructions "mention Friday"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			controller, _, err := e.newController()
			if err != nil {
				return err
			}
			opts := controller.Defaults()
			if cmd.Flags().Changed("tone") {
				t, err := assistant.ParseTone(tone)
				if err != nil {
					return err
				}
				opts.Tone = t
			}
			if cmd.Flags().Changed("instructions") {
				opts.ExtraInstructions = instructions
			}

			r := controller.GenerateDraft(cmd.Context(), args[0], opts)
			if r.Err != nil {
				return r.Err
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.Draft)
			return nil
		},
	}
	cmd.Flags().StringVar(&tone, "tone", "", "draft tone: professional, friendly, concise or formal")
	cmd.Flags().StringVar(&instructions, "instructions", "", "extra instructions for the assistant")
	return cmd
}

func newSendCmd(e *env) *cobra.Command {
	var (
		text     string
		textFile string
		yes      bool
	)
	cmd := &cobra.Command{
		Use:   "send <message-id>",
		Short: "Send a draft reply",
		Long: `Send a draft reply for one email. Sending is simulated by the backend.

Without --text or --text-file the draft currently stored on the email is
sent. You are asked to confirm unless --yes is given or stdin is not a
terminal.

Examples:
  mailpanel send 18c2f0a9
  mailpanel send 18c2f0a9 --text-file reply.txt --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			messageID := args[0]
			controller, _, err := e.newController()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch {
			case cmd.Flags().Changed("text"):
			case textFile != "":
				data, err := os.ReadFile(textFile)
				if err != nil {
					return fmt.Errorf("read draft file: %w", err)
				}
				text = string(data)
			default:
				text, err = storedDraft(cmd, controller, messageID)
				if err != nil {
					return err
				}
			}
			if strings.TrimSpace(text) == "" {
				return errors.New("draft text is empty")
			}

			if !yes && e.isTerminal(os.Stdin.Fd()) {
				confirmed := false
				err := huh.NewConfirm().
					Title(fmt.Sprintf("Send draft for %s?", messageID)).
					Description(truncateText(text, 300)).
					Affirmative("Send").
					Negative("Cancel").
					Value(&confirmed).
					Run()
				if err != nil {
					return fmt.Errorf("confirm: %w", err)
				}
				if !confirmed {
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
			}

			r := controller.SendDraft(cmd.Context(), messageID, text)
			if r.Err != nil {
				return r.Err
			}
			fmt.Fprintln(out, r.Notice())

			lr := controller.LoadEmails(cmd.Context())
			if lr.Err != nil {
				return lr.Err
			}
			fmt.Fprintln(out)
			outputEmailsTable(out, lr.Emails)
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "draft text to send")
	cmd.Flags().StringVar(&textFile, "text-file", "", "read the draft text from a file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "send without asking")
	cmd.MarkFlagsMutuallyExclusive("text", "text-file")
	return cmd
}

// storedDraft returns the draft currently attached to messageID.
func storedDraft(cmd *cobra.Command, controller *panel.Controller, messageID string) (string, error) {
	lr := controller.LoadEmails(cmd.Context())
	if lr.Err != nil {
		return "", lr.Err
	}
	p := panel.New()
	p.Replace(lr.Emails)
	if p.Index(messageID) < 0 {
		return "", fmt.Errorf("send %s: %w", messageID, panel.ErrUnknownMessage)
	}
	text, ok := p.DraftText(messageID)
	if !ok {
		return "", fmt.Errorf("send %s: no draft yet; run 'mailpanel draft %s' or pass --text", messageID, messageID)
	}
	return text, nil
}

func newPingCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.newClient()
			if err != nil {
				return err
			}
			h, err := client.Health(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backend:  %s\n", client.BaseURL())
			fmt.Fprintf(out, "Status:   %s\n", valueOr(h.Status, "unknown"))
			if h.Version != "" {
				fmt.Fprintf(out, "Version:  %s\n", h.Version)
			}
			if h.Message != "" {
				fmt.Fprintf(out, "Message:  %s\n", panel.DisplayText(h.Message))
			}
			return nil
		},
	}
}

func outputEmailsJSON(w io.Writer, emails []assistant.Email) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(emails)
}
