package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage saved defaults",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show saved defaults",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("model:     %s\n", orUnset(userSettings.DefaultModel))
		fmt.Printf("host:      %s\n", orUnset(userSettings.DefaultHost))
		fmt.Printf("inventory: %s\n", orUnset(userSettings.InventoryPath))
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <model|host|inventory> <value>",
	Short: "Save a default value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "model":
			userSettings.DefaultModel = args[1]
		case "host":
			userSettings.DefaultHost = args[1]
		case "inventory":
			userSettings.InventoryPath = args[1]
		default:
			return fmt.Errorf("unknown setting %q (want model, host, or inventory)", args[0])
		}
		return userSettings.Save()
	},
}

var settingsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all saved defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		userSettings.Clear()
		return userSettings.Save()
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsClearCmd)
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}
