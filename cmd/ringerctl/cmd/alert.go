package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Asami3315/Emergency-Ringer/internal/alert"
	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
	"github.com/Asami3315/Emergency-Ringer/internal/service/control"
)

func newTriggerCommand() *cobra.Command {
	var (
		voice string
		req   alert.Request
	)

	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Start the alert by hand.",
		Long: `Starts the alert as if a trusted call had arrived, without touching
do-not-disturb or volumes. Use --preview to audition the configured voice
without vibration or strobe.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := domain.ParseVoice(voice)
			if err != nil {
				return err
			}

			req.Voice = parsed

			return run(cmd, control.Trigger(req))
		},
	}

	cmd.Flags().StringVarP(&voice, "voice", "v", "", "voice: ringtone, siren, beep (default from daemon settings)")
	cmd.Flags().DurationVarP(&req.Duration, "duration", "d", 0, "auto-stop delay (default from daemon settings)")
	cmd.Flags().BoolVarP(&req.Preview, "preview", "p", false, "preview without vibration and strobe")

	return cmd
}

func newStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running alert.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, control.Stop())
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the daemon status.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, control.Status())
		},
	}
}

func newNotifyCommand() *cobra.Command {
	var event domain.NotificationEvent

	cmd := &cobra.Command{
		Use:   "notify <source>",
		Short: "Inject a notification for classification.",
		Long: `Posts a notification to the daemon as if a messaging app had shown it.
A trusted incoming call starts the alert exactly like a real one.`,
		Example: `  ringerctl notify org.gnome.calls --category call --title Mom --body "Incoming call"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			event.Source = args[0]

			return run(cmd, control.Notify(&event))
		},
	}

	flags := cmd.Flags()
	flags.StringVar((*string)(&event.Category), "category", "", "notification category: call, msg")
	flags.StringVar(&event.TemplateHint, "template", "", "notification template hint")
	flags.StringVarP(&event.Title, "title", "t", "", "notification title")
	flags.StringVarP(&event.Body, "body", "b", "", "notification body")
	flags.StringVar(&event.ExpandedText, "expanded", "", "expanded notification text")
	flags.StringVar(&event.SubText, "subtext", "", "notification sub-text")

	return cmd
}
