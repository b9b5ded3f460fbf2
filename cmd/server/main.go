// Package main is the reference server binary of spec.md §6: it loads
// a resource directory, builds a single world instance with a default
// starting party, and listens for client connections.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tacticore/internal/character"
	"tacticore/internal/console"
	"tacticore/internal/instancedb"
	"tacticore/internal/logging"
	"tacticore/internal/resource"
	"tacticore/internal/scripthost"
	"tacticore/internal/server"
	"tacticore/internal/world"
)

const defaultPort = "48578"

// defaultParty mirrors the two-character starting roster of the
// reference campaign: a melee lead (luvui) and a ranged support piece
// (aris), each with a distinct accent color for the client's party UI.
var defaultParty = []world.PartyMember{
	{Sheet: "luvui", Accent: character.AccentColor{R: 0xDA, G: 0x2D, B: 0x5C, A: 0xFF}},
	{Sheet: "aris", Accent: character.AccentColor{R: 0x0C, G: 0x94, B: 0xFF, A: 0xFF}},
}

var (
	resourcesDir string
	listenAddr   string
	instanceID   string
	instanceDB   string
	worldSeed    int64
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "tacticore-server RESOURCE_DIR",
	Short: "reference server for a tacticore world instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resourcesDir = args[0]
		if info, err := os.Stat(resourcesDir); err != nil || !info.IsDir() {
			return fmt.Errorf("server: resource directory %q not found", resourcesDir)
		}

		logger, err := logging.New(logging.Options{Verbose: verbose})
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		defer logger.Sync()
		sugar := logger.Sugar()

		resources, err := resource.Load(resourcesDir, logger)
		if err != nil {
			return fmt.Errorf("server: load resources: %w", err)
		}

		host := scripthost.New()
		w, err := world.NewManager(resources, host, console.New(), defaultParty)
		if err != nil {
			return fmt.Errorf("server: build world: %w", err)
		}

		srv := server.New(instanceID, w, resources, sugar)

		if instanceDB != "" {
			reg, err := instancedb.Open(instanceDB)
			if err != nil {
				return fmt.Errorf("server: open instance registry: %w", err)
			}
			defer reg.Close()
			if _, err := reg.EnsureInstance(instanceID, worldSeed); err != nil {
				return fmt.Errorf("server: instance registry: %w", err)
			}
			srv.WithRegistry(reg)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		sugar.Infow("listening", "addr", listenAddr, "instance", instanceID)
		return srv.Listen(ctx, listenAddr)
	},
}

func init() {
	rootCmd.Flags().StringVar(&listenAddr, "listen", "0.0.0.0:"+defaultPort, "address to listen on")
	rootCmd.Flags().StringVar(&instanceID, "instance", "default", "instance id recorded in the instance registry")
	rootCmd.Flags().StringVar(&instanceDB, "instance-db", "", "path to a sqlite instance registry (default: none)")
	rootCmd.Flags().Int64Var(&worldSeed, "seed", 0, "world seed recorded for a newly registered instance")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug-level logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
