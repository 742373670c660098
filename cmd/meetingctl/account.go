package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-sync/internal/adapter/repository"
	"github.com/johnquangdev/meeting-sync/internal/infrastructure/external/automation"
	"github.com/johnquangdev/meeting-sync/internal/usecase/registration"
	"github.com/johnquangdev/meeting-sync/pkg/config"
)

func newRegistrationService(d *deps, cfg *config.Config, db *gorm.DB) *registration.Service {
	return registration.NewService(
		repository.NewAccountRepository(db),
		automation.NewClient(cfg.Registration.AutomationURL, cfg.Registration.RequestTimeout),
		automation.IsTemporary,
		cfg.Registration.MaxElapsed,
		nil,
		d.Logger,
	)
}

func newAccountCommand(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "account",
		Short:   "Manage accounts",
		Aliases: []string{"accounts"},
	}
	cmd.AddCommand(newAccountCreateCommand(d), newAccountShowCommand(d))
	return cmd
}

func newAccountCreateCommand(d *deps) *cobra.Command {
	var apiKey, email, name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account and forward its API key to the automation webhook",
		Long: `Create an account keyed by the transcription provider API key.

The key is then forwarded to REGISTRATION_AUTOMATION_URL. A forwarding
failure is recorded on the account and does not undo it; retry with
"meetingctl registration retry <account-id>".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if apiKey == "" {
				return errors.New("--api-key is required")
			}
			return withDB(d, func(cfg *config.Config, db *gorm.DB) error {
				account, err := newRegistrationService(d, cfg, db).CreateAccount(cmd.Context(), apiKey, email, name)
				if err != nil {
					return fmt.Errorf("failed to create account: %w", err)
				}
				return printJSON(d.Out, account)
			})
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "Transcription provider API key (required)")
	cmd.Flags().StringVar(&email, "email", "", "Owner email")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	return cmd
}

func newAccountShowCommand(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "show <account-id>",
		Short: "Show an account and its stored meeting count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(d, func(_ *config.Config, db *gorm.DB) error {
				account, err := repository.NewAccountRepository(db).FindByID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				n, err := repository.NewMeetingRepository(db).Count(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(d.Out, map[string]interface{}{
					"account":        account,
					"storedMeetings": n,
				})
			})
		},
	}
}

func newRegistrationCommand(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registration",
		Short: "Manage API key forwarding",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "retry <account-id>",
		Short: "Forward the account's API key again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(d, func(cfg *config.Config, db *gorm.DB) error {
				if err := newRegistrationService(d, cfg, db).Forward(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(d.Out, "Registration completed for %s\n", args[0])
				return nil
			})
		},
	})
	return cmd
}
