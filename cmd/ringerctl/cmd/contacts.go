package cmd

import (
	"github.com/spf13/cobra"

	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
	"github.com/Asami3315/Emergency-Ringer/internal/service/control"
)

func newContactsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contacts",
		Aliases: []string{"contact"},
		Short:   "Manage trusted contacts.",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List trusted contacts.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(cmd, control.ListContacts())
			},
		},
		&cobra.Command{
			Use:   "add <name> [number]",
			Short: "Trust a contact.",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, control.AddContact(contactFromArgs(args)))
			},
		},
		&cobra.Command{
			Use:   "remove <name> [number]",
			Short: "Stop trusting a contact.",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, control.RemoveContact(contactFromArgs(args)))
			},
		},
	)

	return cmd
}

func newMonitoringCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitoring",
		Short: "Switch incoming-call monitoring.",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "on",
			Short: "Enable monitoring.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(cmd, control.SetMonitoring(true))
			},
		},
		&cobra.Command{
			Use:   "off",
			Short: "Disable monitoring.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(cmd, control.SetMonitoring(false))
			},
		},
		&cobra.Command{
			Use:   "toggle",
			Short: "Flip the monitoring switch.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(cmd, control.ToggleMonitoring())
			},
		},
	)

	return cmd
}

func contactFromArgs(args []string) domain.TrustedContact {
	contact := domain.TrustedContact{Name: args[0]}
	if len(args) > 1 {
		contact.Number = args[1]
	}

	return contact
}
