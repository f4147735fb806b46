package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dynamixel2/dynamixel"
	"dynamixel2/protocol"
)

var pingCmd = &cobra.Command{
	Use:   "ping <id|broadcast>",
	Short: "Ping a device, or scan the bus with \"broadcast\"",
	Args:  cobra.ExactArgs(1),
	RunE:  runPing,
}

func runPing(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", args[0], err)
	}

	client, closePort, err := openClient()
	if err != nil {
		return err
	}
	defer closePort()

	if id == protocol.BroadcastID {
		found := 0
		err := client.Scan(int(protocol.MaxID)+1, func(replyID uint8, result dynamixel.PingResult, scanErr error) {
			if scanErr != nil {
				logger.Warn("scan reply error", "id", replyID, "err", scanErr)
				return
			}
			found++
			fmt.Printf("%d: model=%#04x firmware=%#02x\n", replyID, result.Model, result.Firmware)
		})
		if err != nil {
			return err
		}
		logger.Info("scan complete", "found", found)
		return nil
	}

	resp, err := client.Ping(id)
	if err != nil {
		return err
	}
	fmt.Printf("%d: model=%#04x firmware=%#02x alert=%v\n", resp.MotorID, resp.Data.Model, resp.Data.Firmware, resp.Alert)
	return nil
}
