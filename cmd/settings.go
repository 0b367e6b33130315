// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"cardline/cli/internal/config"
)

var (
	setBackendURL   string
	setClientID     string
	setClientSecret string
	setRedirectURL  string
	setGmail        string
	setLocalSession string
)

// settingsCmd represents the settings command for viewing and changing CLI
// configuration. Without flags it prints the current settings; with flags it
// updates the config file. Environment variables still override everything
// at run time.
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change CLI settings",
	Long: `The settings command manages the Cardline configuration file. Run it
without flags to see the current values. Pass flags to change settings:

  cardline settings --gmail-insights on
  cardline settings --backend-url https://api.cardline.app

Boolean flags take on/off. CARDLINE_* environment variables override the
file at run time without changing it.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}

		changed := false
		if setBackendURL != "" {
			cfg.BackendURL = setBackendURL
			changed = true
		}
		if setClientID != "" {
			cfg.GoogleClientID = setClientID
			changed = true
		}
		if setClientSecret != "" {
			cfg.GoogleClientSecret = setClientSecret
			changed = true
		}
		if setRedirectURL != "" {
			cfg.RedirectURL = setRedirectURL
			changed = true
		}
		if setGmail != "" {
			v, err := parseOnOff(setGmail)
			if err != nil {
				return fmt.Errorf("--gmail-insights: %w", err)
			}
			cfg.GmailInsights = v
			changed = true
		}
		if setLocalSession != "" {
			v, err := parseOnOff(setLocalSession)
			if err != nil {
				return fmt.Errorf("--allow-local-session: %w", err)
			}
			cfg.AllowLocalSession = v
			changed = true
		}

		if changed {
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("save configuration: %w", err)
			}
			fmt.Println("✅ Settings saved")
			fmt.Println()
		}

		secret := "(not set)"
		if cfg.GoogleClientSecret != "" {
			secret = "***"
		}
		clientID := cfg.GoogleClientID
		if clientID == "" {
			clientID = "(not set)"
		}

		rows := pterm.TableData{
			{"Setting", "Value"},
			{"Backend URL", cfg.BackendURL},
			{"Google client ID", clientID},
			{"Google client secret", secret},
			{"Redirect URL", cfg.RedirectURL},
			{"Gmail insights", onOff(cfg.GmailInsights)},
			{"Allow local session", onOff(cfg.AllowLocalSession)},
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		pterm.Println()
		return nil
	},
}

func init() {
	settingsCmd.Flags().StringVar(&setBackendURL, "backend-url", "", "Set the Cardline API root URL")
	settingsCmd.Flags().StringVar(&setClientID, "client-id", "", "Set the Google OAuth client ID")
	settingsCmd.Flags().StringVar(&setClientSecret, "client-secret", "", "Set the Google OAuth client secret")
	settingsCmd.Flags().StringVar(&setRedirectURL, "redirect-url", "", "Set the loopback redirect URL for sign-in")
	settingsCmd.Flags().StringVar(&setGmail, "gmail-insights", "", "Enable or disable Gmail insights (on/off)")
	settingsCmd.Flags().StringVar(&setLocalSession, "allow-local-session", "", "Enable or disable the local session fallback (on/off)")
	rootCmd.AddCommand(settingsCmd)
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
