package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gakuroku/gakuroku/internal/api"
	"github.com/gakuroku/gakuroku/internal/config"
	"github.com/gakuroku/gakuroku/internal/server"
	"github.com/gakuroku/gakuroku/internal/stats"
	"github.com/gakuroku/gakuroku/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gakuroku",
	Short: "Japanese vocabulary flashcards in the terminal",
	Long:  "Gakuroku (学録) — study Japanese vocabulary lists as flashcards, from a local database or a remote server.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, 0)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides GAKUROKU_DB)")
	pf.String("api-url", "", "Use the REST server at this URL instead of the local database")
	pf.String("api-token", "", "Bearer token for the REST server")
	pf.String("log-file", "", "Write TUI debug logs to this file")

	rootCmd.AddCommand(studyCmd)
	rootCmd.AddCommand(listsCmd)
	rootCmd.AddCommand(cardsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// backend is everything the commands and the TUI need from a card store.
type backend interface {
	server.CardStore
	stats.Provider
}

// localBackend serves cards and statistics from the SQLite database.
type localBackend struct {
	*store.Store
	*stats.Service
}

// env is the resolved configuration and the backend it selects. local is
// nil when cards come from a REST server.
type env struct {
	cfg     *config.Config
	backend backend
	local   *store.Store
}

func (e *env) Close() error {
	if e.local != nil {
		return e.local.Close()
	}
	return nil
}

var errRemote = errors.New("this command needs the local database; unset --api-url")

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openEnv selects the remote API client when api.url is set and the local
// store otherwise.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Remote() {
		c := api.New(cfg.API.URL, cfg.API.Timeout, api.WithToken(cfg.API.Token))
		return &env{cfg: cfg, backend: c}, nil
	}
	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:     cfg,
		backend: localBackend{Store: st, Service: stats.NewService(st)},
		local:   st,
	}, nil
}

// openLocal opens the SQLite store for commands that never go remote.
func openLocal(cmd *cobra.Command) (*config.Config, *store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Remote() {
		return nil, nil, errRemote
	}
	st, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, st, nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return id, nil
}
