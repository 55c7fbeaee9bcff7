package cli

import (
	"fmt"

	"notes-app/src/view"

	"github.com/spf13/cobra"
)

func (a *app) settingsCmd() *cobra.Command {
	var theme, fontSize, defaultSection string
	var compact bool

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change display settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			settings := a.settings()
			changed := false

			if flags.Changed("theme") {
				settings.Theme = view.Theme(theme)
				changed = true
			}
			if flags.Changed("font-size") {
				settings.FontSize = view.FontSize(fontSize)
				changed = true
			}
			if flags.Changed("compact") {
				settings.CompactMode = compact
				changed = true
			}
			if flags.Changed("default-section") {
				settings.DefaultSection = view.Section(defaultSection)
				changed = true
			}

			if changed {
				if err := settings.Validate(); err != nil {
					return err
				}
				if err := a.saveSettings(settings); err != nil {
					return err
				}
			}

			renderSettings(cmd.OutOrStdout(), settings)
			return nil
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "", "dark or light")
	cmd.Flags().StringVar(&fontSize, "font-size", "", "small, medium or large")
	cmd.Flags().BoolVar(&compact, "compact", false, "compact list rendering")
	cmd.Flags().StringVar(&defaultSection, "default-section", "", "active, favorites or trash")
	return cmd
}

func (a *app) saveSettings(settings view.Settings) error {
	a.v.Set(keyTheme, string(settings.Theme))
	a.v.Set(keyFontSize, string(settings.FontSize))
	a.v.Set(keyCompactMode, settings.CompactMode)
	a.v.Set(keyDefaultSection, string(settings.DefaultSection))

	path, err := a.configPath()
	if err != nil {
		return err
	}
	if err := a.v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	a.log.WithField("config", path).Debug("settings saved")
	return nil
}
