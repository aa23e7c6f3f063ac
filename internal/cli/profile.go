package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tally/internal/model"
	"github.com/Makepad-fr/tally/internal/profile"
	"github.com/Makepad-fr/tally/internal/ui"
)

func (a *app) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or set the user profile",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return exitError{code: exitUsage}
		},
	}
	cmd.AddCommand(a.profileShowCmd(), a.profileSetCmd())
	return cmd
}

func (a *app) profileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the user profile",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			adapter, err := a.openAdapter(ctx)
			if err != nil {
				return err
			}
			p, ok, err := profile.Load(ctx, adapter, a.cfg.ProfileKey)
			if err != nil {
				return classify(err)
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no profile yet")
				ui.Hint(cmd.ErrOrStderr(), "create one with `tally profile set --name <name> --email <email>`")
				return nil
			}

			t := ui.Current()
			lines := []string{
				ui.C(t.Title, "Profile"),
				"",
				fmt.Sprintf("%s %s", ui.C(t.Muted, "name: "), p.Name),
				fmt.Sprintf("%s %s", ui.C(t.Muted, "email:"), p.Email),
			}
			if p.ProfileImageURL != "" {
				lines = append(lines, fmt.Sprintf("%s %s", ui.C(t.Muted, "image:"), ui.Truncate(p.ProfileImageURL, 60)))
			}
			ui.Panel(cmd.OutOrStdout(), lines)
			return nil
		},
	}
}

func (a *app) profileSetCmd() *cobra.Command {
	var name, email, image string
	cmd := &cobra.Command{
		Use:   "set --name <name> --email <email> [--image <url>]",
		Short: "Create or update the user profile",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			adapter, err := a.openAdapter(ctx)
			if err != nil {
				return err
			}
			// Unset flags keep their stored values.
			p, _, err := profile.Load(ctx, adapter, a.cfg.ProfileKey)
			if err != nil {
				a.log.WithError(err).Warn("replacing unreadable profile")
				p = model.Profile{}
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				p.Name = name
			}
			if flags.Changed("email") {
				p.Email = email
			}
			if flags.Changed("image") {
				p.ProfileImageURL = image
			}
			if err := profile.Save(ctx, adapter, a.cfg.ProfileKey, p); err != nil {
				return classify(fmt.Errorf("profile: %w", err))
			}
			ui.OK(cmd.OutOrStdout(), "profile saved")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&image, "image", "", "profile image URL")
	return cmd
}
