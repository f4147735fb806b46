package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newWriteCmd(use string, width int) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id|broadcast> <addr> <value>",
		Short: fmt.Sprintf("Write a %d-bit register", width*8),
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWrite(args, width)
		},
	}
}

func runWrite(args []string, width int) error {
	id, err := parseID(args[0])
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", args[0], err)
	}
	addr, err := strconv.ParseUint(args[1], 10, 16)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", args[1], err)
	}
	value, err := strconv.ParseUint(args[2], 10, width*8)
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", args[2], err)
	}

	data := make([]byte, width)
	for i := range data {
		data[i] = byte(value >> (8 * uint(i)))
	}

	client, closePort, err := openClient()
	if err != nil {
		return err
	}
	defer closePort()

	return client.Write(id, uint16(addr), data)
}

var (
	write8Cmd  = newWriteCmd("write8", 1)
	write16Cmd = newWriteCmd("write16", 2)
	write32Cmd = newWriteCmd("write32", 4)
)
