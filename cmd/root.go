package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tuba-naf/teamtask-cli/internal"
)

var (
	verbose    bool
	serverFlag string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "teamtask",
	Short: "Task management and AI chat from the terminal",
	Long: `A terminal client for the Team Task service.

Manage your tasks and talk to the AI task assistant without leaving the
terminal. Your session survives between invocations; log in once and
every command reuses it until you log out.

Quick Start:
  teamtask register               # Create an account and log in
  teamtask tasks list             # See your tasks
  teamtask tasks add "Buy milk"   # Add one
  teamtask chat                   # Talk to the assistant
  teamtask dashboard              # Interactive board with chat overlay

The server URL comes from --server, TEAMTASK_SERVER, or
~/.teamtask/config.yaml, in that order.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "Server URL (overrides config and TEAMTASK_SERVER)")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// env bundles the shared client-side state every command needs
type env struct {
	profileDir string
	config     *internal.Config
	session    *internal.SessionStore
	client     *internal.Client
	guard      *internal.Guard
}

func newEnv() (*env, error) {
	profileDir, err := internal.ProfileDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate profile directory: %w", err)
	}

	cfg, err := internal.LoadConfig(profileDir)
	if err != nil {
		return nil, err
	}
	if serverFlag != "" {
		cfg.ServerURL = serverFlag
	}

	session := internal.NewSessionStore(profileDir)
	client := internal.NewClient(cfg.ServerURL, session)

	return &env{
		profileDir: profileDir,
		config:     cfg,
		session:    session,
		client:     client,
		guard:      internal.NewGuard(session, client),
	}, nil
}

// openArchive opens the local transcript archive in the profile directory
func (e *env) openArchive() (*internal.Archive, error) {
	if err := os.MkdirAll(e.profileDir, 0700); err != nil {
		return nil, err
	}
	return internal.OpenArchive(filepath.Join(e.profileDir, "archive.db"))
}
