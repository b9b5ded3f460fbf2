package client

import (
	"fmt"

	"tacticore/internal/console"
)

// renderMessage formats one console.Message as a single display line,
// styled by severity and, for a Dialogue printer, prefixed with the
// speaking piece's name — the client-side presentation detail spec.md
// §4.8 assigns to Printer ("the scheduler never blocks on reveal
// progress; it's purely a client-side presentation detail").
func renderMessage(styles Styles, msg console.Message) string {
	style := styles.Severity(msg.Severity)
	if msg.Printer.Kind == console.Dialogue {
		return style.Render(fmt.Sprintf("%s: %s", msg.Printer.Speaker, msg.Text))
	}
	return style.Render(msg.Text)
}
