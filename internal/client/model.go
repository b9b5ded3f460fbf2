package client

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"tacticore/internal/character"
	"tacticore/internal/console"
	"tacticore/internal/protocol"
	"tacticore/internal/value"
)

// Mode is the client's input-mode state machine, per spec.md §2's data
// flow ("user input → client input-mode state machine → Action"). Only
// Normal ever produces a Move directly from a key press; the other
// modes gather an ability reference and, if needed, a target before
// producing an Attack/Cast.
type Mode uint8

const (
	ModeNormal Mode = iota
	ModeEnterRef
	ModeTargeting
)

// Model is the bubbletea program state for the terminal reference
// client.
type Model struct {
	conn     *Connection
	cache    *Cache
	styles   Styles
	palette  Palette
	viewport viewport.Model
	input    textinput.Model

	keys KeyMap

	mode        Mode
	pendingKind character.ActionKind // ActionAttack or ActionCast while in ModeEnterRef/ModeTargeting
	pendingRef  string
	targetIdx   int

	showHelp bool
	width    int
	height   int
	ready    bool
	err      error
}

// New builds a client Model around an already-authenticated connection,
// bound to the default key map and palette.
func New(conn *Connection) Model {
	return NewWithKeyMap(conn, DefaultKeyMap())
}

// NewWithKeyMap builds a client Model with key bindings loaded from an
// options file's controls section, and the default palette.
func NewWithKeyMap(conn *Connection, keys KeyMap) Model {
	return NewWithOptions(conn, keys, DefaultPalette())
}

// NewWithOptions builds a client Model with key bindings and a color
// palette both loaded from an options file (spec.md §6's "ui"/
// "controls" sections).
func NewWithOptions(conn *Connection, keys KeyMap, palette Palette) Model {
	ti := textinput.New()
	ti.Placeholder = "attack or spell key"
	ti.CharLimit = 64
	return Model{
		conn:    conn,
		cache:   NewCache(),
		styles:  NewStyles(palette, 80),
		palette: palette,
		input:   ti,
		keys:    keys,
	}
}

func (m Model) Init() tea.Cmd {
	return m.conn.Listen()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.styles = NewStyles(m.palette, msg.Width-4)
		consoleHeight := msg.Height - 6
		if consoleHeight < 3 {
			consoleHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, consoleHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = consoleHeight
		}
		m.input.Width = msg.Width - 4
		m.syncViewport()
		return m, nil

	case packetMsg:
		m.applyPacket(protocol.ServerPacket(msg))
		m.syncViewport()
		return m, m.conn.Listen()

	case disconnectMsg:
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) applyPacket(pkt protocol.ServerPacket) {
	switch pkt.Kind {
	case protocol.KindRegister:
		m.cache.ClientID = pkt.ClientID
	case protocol.KindWorld:
		m.cache.ApplyWorld(pkt.World)
	case protocol.KindMessage:
		m.cache.ApplyMessage(renderMessage(m.styles, pkt.Message))
	case protocol.KindServerPing:
		// No display effect; latency measurement is left to a caller
		// that tracks Nonce round-trip time itself.
	}
}

func (m *Model) syncViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.cache.History, "\n"))
	m.viewport.GotoBottom()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.conn.Close()
		return m, tea.Quit
	}

	switch m.mode {
	case ModeNormal:
		return m.handleNormalKey(msg)
	case ModeEnterRef:
		return m.handleRefKey(msg)
	case ModeTargeting:
		return m.handleTargetKey(msg)
	}
	return m, nil
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.keys.isHelp(msg) {
		m.showHelp = !m.showHelp
		return m, nil
	}
	if dx, dy, ok := m.keys.direction(msg); ok {
		m.submit(character.Move(dx, dy))
		return m, nil
	}
	switch {
	case m.keys.isAttack(msg):
		m.mode = ModeEnterRef
		m.pendingKind = character.ActionAttack
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	case m.keys.isCast(msg):
		m.mode = ModeEnterRef
		m.pendingKind = character.ActionCast
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) handleRefKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		ref := strings.TrimSpace(m.input.Value())
		if ref == "" {
			return m, nil
		}
		m.pendingRef = ref
		m.mode = ModeTargeting
		m.targetIdx = 0
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleTargetKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	targets := m.hostileTargets()
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeNormal
		return m, nil
	case tea.KeyUp, tea.KeyLeft:
		if len(targets) > 0 {
			m.targetIdx = (m.targetIdx - 1 + len(targets)) % len(targets)
		}
		return m, nil
	case tea.KeyDown, tea.KeyRight:
		if len(targets) > 0 {
			m.targetIdx = (m.targetIdx + 1) % len(targets)
		}
		return m, nil
	case tea.KeyEnter:
		if m.targetIdx >= len(targets) {
			return m, nil
		}
		args := map[string]value.Value{"target": value.Str(targets[m.targetIdx].ID)}
		if m.pendingKind == character.ActionCast {
			m.submit(character.Cast(m.pendingRef, args))
		} else {
			m.submit(character.Attack(m.pendingRef, args))
		}
		m.mode = ModeNormal
		return m, nil
	}
	return m, nil
}

// hostileTargets lists every cached piece of a different alliance than
// the client's owned piece, in a stable order for cursor navigation.
func (m Model) hostileTargets() []protocol.PieceSnapshot {
	if m.cache.World == nil {
		return nil
	}
	owned, ok := m.cache.Owned(m.cache.ClientID)
	var targets []protocol.PieceSnapshot
	for _, p := range m.cache.World.Pieces {
		if !ok || p.Alliance != owned.Alliance {
			targets = append(targets, p)
		}
	}
	return targets
}

func (m *Model) submit(action character.Action) {
	if err := m.conn.Send(protocol.SubmitAction(action)); err != nil {
		m.err = err
	}
}

func (m Model) View() string {
	if !m.ready {
		return "connecting...\n"
	}
	if m.showHelp {
		return renderHelp(m.width - 4)
	}

	var b strings.Builder
	b.WriteString(m.styles.Console.Render(m.viewport.View()))
	b.WriteString("\n")

	switch m.mode {
	case ModeEnterRef:
		b.WriteString(m.styles.Input.Render(m.input.View()))
	case ModeTargeting:
		b.WriteString(m.styles.StatusBar.Render(m.targetingPrompt()))
	default:
		b.WriteString(m.styles.StatusBar.Render(m.statusLine()))
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(m.styles.Severity(console.Danger).Render(m.err.Error()))
	}
	return b.String()
}

func (m Model) statusLine() string {
	owned, ok := m.cache.Owned(m.cache.ClientID)
	if !ok {
		return "spectating — press ? for help"
	}
	return fmt.Sprintf("%s  hp %d/%d  sp %d/%d — press ? for help",
		owned.Name, owned.HP, owned.MaxHeart, owned.SP, owned.MaxSoul)
}

func (m Model) targetingPrompt() string {
	targets := m.hostileTargets()
	if len(targets) == 0 {
		return fmt.Sprintf("targeting %s: no targets in view (esc to cancel)", m.pendingRef)
	}
	t := targets[m.targetIdx]
	return fmt.Sprintf("targeting %s -> %s (%d/%d, enter to confirm, esc to cancel)",
		m.pendingRef, t.Name, m.targetIdx+1, len(targets))
}
