package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newReadCmd(use string, width int) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id> <addr>",
		Short: fmt.Sprintf("Read a %d-bit register", width*8),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRead(args, width)
		},
	}
}

func runRead(args []string, width int) error {
	id, err := parseID(args[0])
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", args[0], err)
	}
	addr, err := strconv.ParseUint(args[1], 10, 16)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", args[1], err)
	}

	client, closePort, err := openClient()
	if err != nil {
		return err
	}
	defer closePort()

	resp, err := client.Read(id, uint16(addr), uint16(width))
	if err != nil {
		return err
	}

	var value uint64
	for i, b := range resp.Data {
		value |= uint64(b) << (8 * uint(i))
	}
	fmt.Printf("%d\n", value)
	return nil
}

var (
	read8Cmd  = newReadCmd("read8", 1)
	read16Cmd = newReadCmd("read16", 2)
	read32Cmd = newReadCmd("read32", 4)
)
