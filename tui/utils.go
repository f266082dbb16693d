package tui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/bassamadnan/mailpanel/panel"
)

const (
	markerNoDraft  = "○"
	markerHasDraft = "●"
)

// truncate shortens a string to fit maxWidth terminal cells, adding "..." if
// truncated. Newlines and tabs are flattened first so they cannot break the
// layout.
func truncate(s string, maxWidth int) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")

	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// fitWidth truncates then pads s to exactly width cells.
func fitWidth(s string, width int) string {
	return runewidth.FillRight(truncate(s, width), width)
}

// senderName strips the address part of "Name <addr>".
func senderName(from string) string {
	if idx := strings.Index(from, "<"); idx > 0 {
		from = strings.TrimSpace(from[:idx])
	}
	if from == "" {
		return "(Unknown Sender)"
	}
	return from
}

// stateMarker is the one-cell glyph shown before the subject.
func stateMarker(item panel.Item, spinnerFrame string) string {
	switch {
	case item.Pending && spinnerFrame != "":
		return runewidth.Truncate(spinnerFrame, 1, "")
	case item.State() == panel.HasDraft:
		return markerHasDraft
	default:
		return markerNoDraft
	}
}

// formatEmailListItem formats a single email for the list view.
// itemContentTextWidth is the width for the text inside the box lines
// (excluding the spaces next to the vertical bars).
func formatEmailListItem(item panel.Item, isSelected bool, itemContentTextWidth int, spinnerFrame string) string {
	var boxCharStyle, subjectStyle, secondaryTextStyle = NormalBoxCharStyle, NormalSubjectStyle, NormalSecondaryTextStyle
	itemBlockStyle := EmailListItemStyle
	if isSelected {
		boxCharStyle = SelectedBoxCharStyle
		subjectStyle = SelectedSubjectStyle
		secondaryTextStyle = SelectedSecondaryTextStyle
		itemBlockStyle = SelectedEmailListItemStyle
	}

	email := item.Email
	subject := panel.DisplayText(email.Subject)
	if subject == "" {
		subject = "(No Subject)"
	}
	subjectLine := fitWidth(fmt.Sprintf("%s %s", stateMarker(item, spinnerFrame), subject), itemContentTextWidth)

	from := senderName(panel.DisplayText(email.Sender))
	class := panel.DisplayText(email.Classification)
	if class == "" {
		class = "unclassified"
	}
	classPart := "[" + class + "]"
	maxFromLen := itemContentTextWidth - runewidth.StringWidth(classPart) - 1
	var secondary string
	if maxFromLen < 1 {
		secondary = classPart
	} else {
		secondary = fmt.Sprintf("%s %s", truncate(from, maxFromLen), classPart)
	}
	secondaryLine := fitWidth(secondary, itemContentTextWidth)

	horizontalBar := strings.Repeat(BoxHorizontal, itemContentTextWidth+2)

	line1 := boxCharStyle.Render(BoxTopLeft) + boxCharStyle.Render(horizontalBar) + boxCharStyle.Render(BoxTopRight)
	line2 := fmt.Sprintf("%s %s %s",
		boxCharStyle.Render(BoxVertical),
		subjectStyle.Render(subjectLine),
		boxCharStyle.Render(BoxVertical),
	)
	line3 := fmt.Sprintf("%s %s %s",
		boxCharStyle.Render(BoxVertical),
		secondaryTextStyle.Render(secondaryLine),
		boxCharStyle.Render(BoxVertical),
	)
	line4 := boxCharStyle.Render(BoxBottomLeft) + boxCharStyle.Render(horizontalBar) + boxCharStyle.Render(BoxBottomRight)

	return itemBlockStyle.Render(strings.Join([]string{line1, line2, line3, line4}, "\n"))
}
