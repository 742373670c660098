package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-sync/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-sync/pkg/config"
)

// deps holds what commands need from the environment
type deps struct {
	LoadConfig func() (*config.Config, error)
	OpenDB     func(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error)
	HTTPClient *http.Client
	Logger     *zap.Logger
	Out        io.Writer
}

func defaultDeps() *deps {
	logger, err := zap.NewDevelopment()
	if err != nil {
		logger = zap.NewNop()
	}
	return &deps{
		LoadConfig: config.Load,
		OpenDB:     database.NewPostgresDB,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     logger,
	}
}

func newRootCommand(d *deps) *cobra.Command {
	root := &cobra.Command{
		Use:           "meetingctl",
		Short:         "Administer a meeting-sync deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if d.Out == nil {
				d.Out = cmd.OutOrStdout()
			}
		},
	}

	root.AddCommand(
		newMigrateCommand(d),
		newAccountCommand(d),
		newRegistrationCommand(d),
		newTokenCommand(d),
		newWebhookCommand(d),
		newArchiveCommand(d),
	)
	return root
}

// withDB loads config and opens the meeting store for the duration of fn
func withDB(d *deps, fn func(cfg *config.Config, db *gorm.DB) error) error {
	cfg, err := d.LoadConfig()
	if err != nil {
		return err
	}
	db, err := d.OpenDB(cfg, d.Logger)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)
	return fn(cfg, db)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
