package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-vgc/vgc"
)

func init() {
	rootCmd.AddCommand(pressureCmd)
	rootCmd.AddCommand(temperatureCmd)
	rootCmd.AddCommand(unitCmd)
	rootCmd.AddCommand(identifyCmd)
	rootCmd.AddCommand(rawCmd)
}

var pressureCmd = &cobra.Command{
	Use:   "pressure [gauge]",
	Short: "Read the pressure of one gauge channel",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gauge := 1
		if len(args) == 1 {
			g, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("gauge must be an integer: %w", err)
			}
			gauge = g
		}

		dev, err := newConnectedDevice()
		if err != nil {
			return err
		}
		defer func() { _ = dev.Disconnect() }()

		v, err := dev.ReadPressure(gauge)
		if err != nil {
			return err
		}
		if v == vgc.SentinelReading {
			return fmt.Errorf("no valid reading from gauge %d", gauge)
		}

		unit := dev.UnitName()
		if unit == "" {
			fmt.Printf("%g\n", v)
		} else {
			fmt.Printf("%g %s\n", v, unit)
		}

		return nil
	},
}

var temperatureCmd = &cobra.Command{
	Use:   "temperature",
	Short: "Read the controller temperature",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := newConnectedDevice()
		if err != nil {
			return err
		}
		defer func() { _ = dev.Disconnect() }()

		v, err := dev.ReadTemperature()
		if err != nil {
			return err
		}
		if v == vgc.SentinelReading {
			return fmt.Errorf("no valid temperature reading")
		}

		fmt.Printf("%g\n", v)

		return nil
	},
}

var unitCmd = &cobra.Command{
	Use:   "unit [code]",
	Short: "Get or set the display pressure unit (0=mbar 1=Torr 2=Pascal 3=Micron 4=hPascal 5=Volt)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := newConnectedDevice()
		if err != nil {
			return err
		}
		defer func() { _ = dev.Disconnect() }()

		if len(args) == 0 {
			u, err := dev.GetPressureUnit()
			if err != nil {
				return err
			}
			fmt.Printf("%d (%s)\n", int(u), u)

			return nil
		}

		code, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("unit code must be an integer: %w", err)
		}

		ok, err := dev.SetPressureUnit(vgc.PressureUnit(code))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("controller did not accept unit code %d", code)
		}

		fmt.Printf("display unit set to %s\n", vgc.PressureUnit(code))

		return nil
	},
}

var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Query the controller identity (AYT)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := newConnectedDevice()
		if err != nil {
			return err
		}
		defer func() { _ = dev.Disconnect() }()

		if err := dev.InitializeIdentity(); err != nil {
			return err
		}

		ident, ok := dev.Identity()
		if !ok {
			return fmt.Errorf("controller returned a malformed identity reply")
		}

		fmt.Printf("type:     %s\n", ident.Type)
		fmt.Printf("model:    %s\n", ident.Model)
		fmt.Printf("serial:   %d\n", ident.Serial)
		fmt.Printf("firmware: %s\n", ident.Firmware)
		fmt.Printf("hardware: %s\n", ident.Hardware)
		fmt.Printf("gauges:   %d\n", ident.GaugeCount)

		return nil
	},
}

var rawCmd = &cobra.Command{
	Use:   "raw [command]",
	Short: "Send a raw mnemonic, or start an interactive console when no command is given",
	Long: `Send an arbitrary protocol mnemonic through the full handshake and print
the reply payload.

Without arguments, raw starts a line-oriented console: each entered line
is sent as a command, "quit" or "exit" closes the console.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := newConnectedDevice()
		if err != nil {
			return err
		}
		defer func() { _ = dev.Disconnect() }()

		if len(args) == 1 {
			reply, err := dev.RawCommand(args[0])
			if err != nil {
				return err
			}
			fmt.Println(reply)

			return nil
		}

		return runConsole(dev)
	},
}

// runConsole reads command lines from stdin and forwards them through the
// raw passthrough until EOF or an explicit quit.
func runConsole(dev *vgc.Device) error {
	fmt.Println(`raw console; enter a mnemonic per line, "quit" to leave`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")

		if !scanner.Scan() {
			fmt.Println()

			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "quit", "exit":
			return nil
		}

		reply, err := dev.RawCommand(line)
		if err != nil {
			fmt.Printf("error: %v\n", err)

			continue
		}

		fmt.Println(reply)
	}
}
