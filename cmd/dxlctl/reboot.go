package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rebootCmd = &cobra.Command{
	Use:   "reboot <id|broadcast>",
	Short: "Reboot a device",
	Args:  cobra.ExactArgs(1),
	RunE:  runReboot,
}

func runReboot(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", args[0], err)
	}

	client, closePort, err := openClient()
	if err != nil {
		return err
	}
	defer closePort()

	return client.Reboot(id)
}
