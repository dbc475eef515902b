// Command axaremote controls an AXA Remote window opener from the command
// line.
//
// Usage:
//
//	axaremote [flags] serial <port> <action>
//	axaremote [flags] telnet <host> <port> <action>
//
// where action is one of status, open, close or stop. With --wait the open
// and close actions poll the opener and report progress until the motion
// completes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/axaremote/go-axa/axa"
	"github.com/axaremote/go-axa/logger"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `usage:
  axaremote [flags] serial <port> <action>
  axaremote [flags] telnet <host> <port> <action>

actions: status | open | close | stop

flags:
`)
	flag.PrintDefaults()
}

func main() {
	wait := flag.Bool("wait", false, "report progress until the motion completes")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Usage = usage
	flag.Parse()

	if *debug {
		logger.SetLevel(logger.DebugLevel)
	}

	device, action, err := deviceFromArgs(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, device, action, *wait, *debug); err != nil {
		logger.Error("communicating with the AXA Remote failed", "error", err)
		os.Exit(1)
	}
}

func deviceFromArgs(args []string) (*axa.Device, string, error) {
	if len(args) == 0 {
		return nil, "", errors.New("missing transport, want serial or telnet")
	}

	switch args[0] {
	case "serial":
		if len(args) != 3 {
			return nil, "", errors.New("usage: serial <port> <action>")
		}

		device, err := axa.NewSerialDevice(args[1])
		if err != nil {
			return nil, "", err
		}

		return device, args[2], nil

	case "telnet":
		if len(args) != 4 {
			return nil, "", errors.New("usage: telnet <host> <port> <action>")
		}

		port, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, "", fmt.Errorf("invalid port %q", args[2])
		}

		device, err := axa.NewTelnetDevice(args[1], port)
		if err != nil {
			return nil, "", err
		}

		return device, args[3], nil

	default:
		return nil, "", fmt.Errorf("unknown transport %q, want serial or telnet", args[0])
	}
}

func run(ctx context.Context, device *axa.Device, action string, wait, debug bool) error {
	defer func() { _ = device.Disconnect() }()

	switch action {
	case "status":
		if err := device.Connect(ctx); err != nil {
			return err
		}

		_, msg, err := device.RawStatus(ctx)
		if err != nil {
			return err
		}

		fmt.Println(device.Name())
		fmt.Println(device.Version())
		fmt.Println(msg)

		return nil

	case "open":
		// Seed the estimate at fully closed so the progress ramp has an
		// anchor even when the process just started.
		if err := device.SetPosition(0.0); err != nil {
			return err
		}

		if err := device.Open(ctx); err != nil {
			return err
		}

		fmt.Println("AXA Remote is opening")
		if wait {
			return waitFor(ctx, device, axa.StatusOpen, debug)
		}

		return nil

	case "close":
		if err := device.SetPosition(100.0); err != nil {
			return err
		}

		if err := device.Close(ctx); err != nil {
			return err
		}

		fmt.Println("AXA Remote is closing")
		if wait {
			return waitFor(ctx, device, axa.StatusLocked, debug)
		}

		return nil

	case "stop":
		if err := device.Stop(ctx); err != nil {
			return err
		}

		fmt.Println("AXA Remote stopped")

		return nil

	default:
		return fmt.Errorf("unknown action %q, want status, open, close or stop", action)
	}
}

// waitFor polls the reconciled status every 100ms and reports progress until
// the opener reaches target or the user interrupts.
func waitFor(ctx context.Context, device *axa.Device, target axa.Status, debug bool) error {
	for {
		status, position := device.SyncStatus(ctx)

		if debug {
			logger.Info("progress", "status", status, "position", position)
		} else {
			fmt.Printf("%-9s: %5.1f %%\r", status, position)
		}

		if status == target {
			if !debug {
				fmt.Println()
			}

			return nil
		}

		select {
		case <-ctx.Done():
			if !debug {
				fmt.Println()
			}

			return nil
		case <-time.After(100 * time.Millisecond):
		}
	}
}
