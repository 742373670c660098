package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/meeting-sync/internal/infrastructure/storage"
)

func newArchiveCommand(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect archived webhook payloads",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list <account-id>",
		Short: "List archived payload objects of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := d.LoadConfig()
			if err != nil {
				return err
			}
			if !cfg.Archive.Enabled {
				return errors.New("payload archive is disabled (ARCHIVE_ENABLED=false)")
			}
			archive, err := storage.NewPayloadArchive(cmd.Context(), &cfg.Archive)
			if err != nil {
				return err
			}
			names, err := archive.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(d.Out, name)
			}
			return nil
		},
	})
	return cmd
}
