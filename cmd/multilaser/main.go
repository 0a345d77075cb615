// cmd/multilaser/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.bug.st/serial/enumerator"

	"github.com/kwbong/multilaser/internal/config"
	"github.com/kwbong/multilaser/internal/laser"
)

const usage = `usage: multilaser <config.yaml> <command> [args]
       multilaser list-ports

commands:
  status                     print every channel state
  on <ch> | off <ch>         drive one channel (held until Ctrl-C)
  toggle <ch>                toggle one channel (held until Ctrl-C)
  all-on | all-off           drive every channel
  flash <ch> [count] [ms]    blink one channel
  pattern [ms] [cycles]      sequential walk across all channels
  stop                       emergency stop
  idn | scpi-version         device identification (SCPI mode)
  errors                     drain the device error queue (SCPI mode)
  list-ports                 enumerate serial ports and exit`

func main() {
	log.SetFlags(log.LstdFlags)

	if len(os.Args) >= 2 && os.Args[1] == "list-ports" {
		if err := listPorts(); err != nil {
			log.Fatalf("list-ports failed: %v", err)
		}
		return
	}

	if len(os.Args) < 3 {
		log.Fatal(usage)
	}

	cfgPath := os.Args[1]
	command := os.Args[2]
	args := os.Args[3:]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	// --------------------
	// Build + connect controller
	// --------------------

	ctl, err := laser.Build(cfg.Laser, log.Default())
	if err != nil {
		log.Fatalf("controller build failed: %v", err)
	}

	if err := ctl.Connect(); err != nil {
		log.Fatalf("connect failed: %v", err)
	}

	runErr := run(ctl, command, args)

	// Channel drives drop to all-off on disconnect, so stateful
	// commands hold the session open until interrupted.
	if runErr == nil && holdsChannels(command) {
		log.Printf("holding channel state; Ctrl-C turns everything off and exits")
		waitForInterrupt()
	}

	// Safety all-off precedes port release inside Disconnect.
	if err := ctl.Disconnect(); err != nil {
		log.Printf("disconnect: %v", err)
	}

	if runErr != nil {
		log.Fatalf("%s failed: %v", command, runErr)
	}
}

func run(ctl *laser.Controller, command string, args []string) error {
	switch command {
	case "status":
		states, err := ctl.GetAll()
		if err != nil {
			return err
		}
		fmt.Printf("mode: %s\n", ctl.Mode())
		for i, s := range states {
			fmt.Printf("channel %d: %s\n", i+1, s)
		}
		return nil

	case "on", "off", "toggle":
		ch, err := intArg(args, 0, -1)
		if err != nil {
			return err
		}
		switch command {
		case "on":
			return ctl.TurnOn(ch)
		case "off":
			return ctl.TurnOff(ch)
		default:
			return ctl.Toggle(ch)
		}

	case "all-on":
		return ctl.TurnOnAll()

	case "all-off":
		return ctl.TurnOffAll()

	case "flash":
		ch, err := intArg(args, 0, -1)
		if err != nil {
			return err
		}
		count, err := intArg(args, 1, 3)
		if err != nil {
			return err
		}
		ms, err := intArg(args, 2, 500)
		if err != nil {
			return err
		}
		return ctl.Flash(ch, count, time.Duration(ms)*time.Millisecond)

	case "pattern":
		ms, err := intArg(args, 0, 1000)
		if err != nil {
			return err
		}
		cycles, err := intArg(args, 1, 1)
		if err != nil {
			return err
		}
		return ctl.SequentialPattern(time.Duration(ms)*time.Millisecond, cycles)

	case "stop":
		if !ctl.EmergencyStop() {
			return fmt.Errorf("emergency stop could not be delivered")
		}
		return nil

	case "idn":
		idn, err := ctl.Identify()
		if err != nil {
			return err
		}
		fmt.Println(idn)
		return nil

	case "scpi-version":
		vers, err := ctl.SCPIVersion()
		if err != nil {
			return err
		}
		fmt.Println(vers)
		return nil

	case "errors":
		records, err := ctl.CheckErrors()
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("no errors")
			return nil
		}
		for _, r := range records {
			fmt.Printf("%d: %s\n", r.Code, r.Message)
		}
		return nil

	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

// holdsChannels reports whether a command leaves channels driven and
// therefore needs the session held open.
func holdsChannels(command string) bool {
	switch command {
	case "on", "off", "toggle", "all-on":
		return true
	}
	return false
}

func waitForInterrupt() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}

// intArg returns args[i] as an int, or the default when absent.
// A negative default marks the argument as required.
func intArg(args []string, i, def int) (int, error) {
	if i >= len(args) {
		if def < 0 {
			return 0, fmt.Errorf("missing argument %d\n%s", i+1, usage)
		}
		return def, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("argument %q is not a number", args[i])
	}
	return n, nil
}

func listPorts() error {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("no serial ports found")
		return nil
	}
	for _, p := range ports {
		if p.IsUSB {
			fmt.Printf("%s  USB %s:%s  %s\n", p.Name, p.VID, p.PID, p.Product)
			continue
		}
		fmt.Println(p.Name)
	}
	return nil
}
