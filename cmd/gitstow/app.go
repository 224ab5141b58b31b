package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/4thel00z/gitstow/internal"
)

// session bundles the configured service for one command run. Store
// construction depends on the --config flag, so verbs open it inside RunE
// instead of main.
type session struct {
	cfg     *internal.Config
	service *internal.RepositoryService
	author  internal.Author
	close   func()
}

func openSession(cmd *cobra.Command) (*session, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = internal.DefaultConfigPath()
	}

	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := internal.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	store, closeStore, err := internal.OpenStore(cmd.Context(), cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	workspaces := internal.NewWorkspaceManager("", logger)
	return &session{
		cfg:     cfg,
		service: internal.NewRepositoryService(store, workspaces, logger),
		author:  internal.Author{Name: cfg.Author.Name, Email: cfg.Author.Email},
		close: func() {
			_ = closeStore()
			_ = logger.Sync()
		},
	}, nil
}

// target reads the repository coordinates every verb needs.
func target(cmd *cobra.Command) (string, string, error) {
	appID, _ := cmd.Flags().GetString("app")
	storagePath, _ := cmd.Flags().GetString("path")

	if appID == "" {
		return "", "", fmt.Errorf("--app is required")
	}
	if storagePath == "" {
		return "", "", fmt.Errorf("--path is required")
	}
	return appID, storagePath, nil
}
