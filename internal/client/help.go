package client

import "github.com/charmbracelet/glamour"

// helpText is the static controls/about pane content, rendered through
// glamour the same way the teacher's autopoiesis_page.go turns a fixed
// markdown string into terminal output.
const helpText = `# controls

| key | action |
|---|---|
| arrows / hjkl | move; while targeting, arrows cycle through targets |
| a | choose an attack |
| c | choose a spell |
| enter | confirm the current action or targeting cursor |
| esc | cancel targeting, return to movement |
| ? | toggle this help pane |
| ctrl+c | quit |

a turn only advances once the server accepts a submitted action; a
rejected action means the cached world is stale, and the server's next
snapshot replaces it wholesale.
`

// renderHelp renders helpText to width columns, falling back to the
// unrendered markdown if glamour's renderer can't be constructed (e.g.
// an unsupported terminal) rather than failing the whole client.
func renderHelp(width int) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return helpText
	}
	out, err := renderer.Render(helpText)
	if err != nil {
		return helpText
	}
	return out
}
