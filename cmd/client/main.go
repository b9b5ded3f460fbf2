// Package main is the terminal reference client binary of spec.md §6:
// it takes a resource directory and an optional server URL of the form
// esprit://host[:port], connects, and runs the bubbletea program from
// internal/client.
package main

import (
	"fmt"
	"net/url"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"tacticore/internal/client"
	"tacticore/internal/config"
)

const defaultPort = "48578"

var (
	// resourcesDir is validated but not loaded client-side: the client
	// never resolves ability refs itself, it only sends them and lets
	// the server's registry validate on submission.
	resourcesDir string
	serverURL    string
	userDir      string
	username     string
)

var rootCmd = &cobra.Command{
	Use:   "tacticore-client RESOURCE_DIR",
	Short: "terminal reference client for a tacticore server instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resourcesDir = args[0]
		if info, err := os.Stat(resourcesDir); err != nil || !info.IsDir() {
			return fmt.Errorf("client: resource directory %q not found", resourcesDir)
		}

		addr, err := serverAddr(serverURL)
		if err != nil {
			return err
		}

		dir := userDir
		if dir == "" {
			dir, err = config.DefaultUserDir()
			if err != nil {
				return err
			}
		}
		cfg, err := config.Load(filepath.Join(dir, "options.yaml"))
		if err != nil {
			return err
		}

		conn, err := client.Dial(addr, username, "")
		if err != nil {
			return fmt.Errorf("client: %w", err)
		}
		defer conn.Close()

		model := client.NewWithOptions(conn, keyMapFromConfig(cfg.Controls), paletteFromConfig(cfg.UI.Palette))
		program := tea.NewProgram(model, tea.WithAltScreen())
		_, err = program.Run()
		return err
	},
}

func init() {
	rootCmd.Flags().StringVar(&serverURL, "server", "esprit://127.0.0.1:"+defaultPort, "server URL (esprit://host[:port])")
	rootCmd.Flags().StringVar(&userDir, "user", "", "user directory containing options.yaml (default: OS config dir)")
	rootCmd.Flags().StringVar(&username, "username", defaultUsername(), "username to present during the authentication handshake")
}

func keyMapFromConfig(c config.ControlsConfig) client.KeyMap {
	return client.KeyMap{
		Up: c.Up, Down: c.Down, Left: c.Left, Right: c.Right,
		UpLeft: c.UpLeft, UpRight: c.UpRight, DownLeft: c.DownLeft, DownRight: c.DownRight,
		Wait: c.Wait, Attack: c.Attack, Cast: c.Cast, Help: c.Help,
	}
}

func paletteFromConfig(p config.PaletteConfig) client.Palette {
	return client.Palette{
		Foreground: lipgloss.Color(p.Foreground),
		Muted:      lipgloss.Color(p.Muted),
		Border:     lipgloss.Color(p.Border),
		Danger:     lipgloss.Color(p.Danger),
		Important:  lipgloss.Color(p.Important),
		Special:    lipgloss.Color(p.Special),
		Combat:     lipgloss.Color(p.Combat),
		Cursor:     lipgloss.Color(p.Cursor),
		OwnedPiece: lipgloss.Color(p.OwnedPiece),
		EnemyPiece: lipgloss.Color(p.EnemyPiece),
	}
}

// serverAddr strips the esprit:// scheme from raw and supplies the
// default port when none is given.
func serverAddr(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("client: invalid server URL %q: %w", raw, err)
	}
	if u.Scheme != "" && u.Scheme != "esprit" {
		return "", fmt.Errorf("client: unsupported server URL scheme %q", u.Scheme)
	}
	host := u.Host
	if host == "" {
		host = strings.TrimPrefix(raw, "esprit://")
	}
	if !strings.Contains(host, ":") {
		host += ":" + defaultPort
	}
	return host, nil
}

func defaultUsername() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "player"
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
