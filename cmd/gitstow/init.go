package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a repository in the store",
		Long:  `Create a fresh repository for an application and upload it to the storage path.`,
		RunE:  runInit,
	}

	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	appID, storagePath, err := target(cmd)
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	sha, err := s.service.Initialize(cmd.Context(), appID, storagePath, s.author)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "[%s] initialized %s at %s\n", sha[:7], appID, storagePath)
	return nil
}
