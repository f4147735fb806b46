package main

import (
	"os"
	"runtime"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"dynamixel2/dynamixel"
	"dynamixel2/protocol"
	dxlserial "dynamixel2/serial"
)

var (
	portPath  string
	baudRate  uint32
	verbosity int

	logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
)

func defaultPortPath() string {
	if runtime.GOOS == "windows" {
		return "COM3"
	}
	return "/dev/ttyUSB0"
}

var rootCmd = &cobra.Command{
	Use:           "dxlctl",
	Short:         "Command a DYNAMIXEL Protocol 2.0 bus from the shell",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		switch {
		case verbosity >= 2:
			logger.SetLevel(log.DebugLevel)
		case verbosity == 1:
			logger.SetLevel(log.InfoLevel)
		default:
			logger.SetLevel(log.WarnLevel)
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&portPath, "port", "p", defaultPortPath(), "serial port device path")
	flags.Uint32VarP(&baudRate, "baud", "b", 9600, "serial baud rate")
	flags.CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v, -vv)")

	rootCmd.AddCommand(pingCmd, rebootCmd, read8Cmd, read16Cmd, read32Cmd, write8Cmd, write16Cmd, write32Cmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

// openClient opens the configured serial port and returns a ready-to-use
// Client together with a closer the caller must defer.
func openClient() (*dynamixel.Client, func(), error) {
	port, err := dxlserial.Open(portPath, baudRate)
	if err != nil {
		return nil, nil, err
	}
	bus := protocol.NewBus(port, 256, 256)
	client := dynamixel.NewClient(bus)
	return client, func() { port.Close() }, nil
}

// parseID accepts a decimal unicast id or the literal "broadcast".
func parseID(s string) (uint8, error) {
	if s == "broadcast" {
		return protocol.BroadcastID, nil
	}
	n, err := strconv.ParseUint(s, 10, 8)
	return uint8(n), err
}
