package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-runewidth"

	"github.com/bassamadnan/mailpanel/assistant"
	"github.com/bassamadnan/mailpanel/panel"
)

func outputEmailsTable(w io.Writer, emails []assistant.Email) {
	if len(emails) == 0 {
		fmt.Fprintln(w, "No emails. Run 'mailpanel sync' to fetch new mail.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCLASS\tFROM\tSUBJECT\tDRAFT")
	fmt.Fprintln(tw, "──\t─────\t────\t───────\t─────")
	for _, e := range emails {
		draft := "-"
		if e.HasDraft() {
			draft = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			cell(e.MessageID, 40),
			cell(valueOr(e.Classification, "-"), 16),
			cell(e.Sender, 32),
			cell(valueOr(e.Subject, "(No Subject)"), 50),
			draft,
		)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d email(s)\n", len(emails))
}

// cell makes backend text safe for one table cell.
func cell(s string, width int) string {
	s = panel.DisplayText(s)
	s = strings.Join(strings.Fields(s), " ")
	return truncateText(s, width)
}

func truncateText(s string, width int) string {
	return runewidth.Truncate(s, width, "...")
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
