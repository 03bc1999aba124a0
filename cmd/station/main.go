// Command station is the driver station process: it wires the codec,
// connection engine, input poller, practice sequencer, hotkey dispatcher
// and coordinator together and drives them from a bubbletea dev console.
// Startup parses flags, runs a host preflight when the app data directory
// resolves, starts the background tasks, installs a signal handler for
// graceful shutdown, then runs the console program to completion.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/gousb"

	tea "github.com/charmbracelet/bubbletea"

	"station/internal/applog"
	"station/internal/cli/embedded"
	"station/internal/cli/ui"
	"station/internal/config"
	"station/internal/connection"
	"station/internal/coordinator"
	"station/internal/diagnostics"
	"station/internal/hotkey"
	"station/internal/input"
)

var teamFlag = flag.Int("team", 0, "team number (0 uses the saved configuration)")

func main() {
	flag.Parse()

	if appDir, err := embedded.GetAppDataDir(); err == nil {
		if err := diagnostics.Preflight(filepath.Join(appDir, "logs")); err != nil {
			fmt.Fprintf(os.Stderr, "station: preflight failed: %v\n", err)
			os.Exit(1)
		}
	}

	logger := applog.Get()
	defer logger.Close()

	cfg, err := config.Load()
	if err != nil {
		logger.Printf("config: using defaults after load error: %v", err)
	}
	if *teamFlag != 0 {
		cfg.TeamNumber = *teamFlag
	}

	coord := coordinator.New(cfg.TeamNumber, cfg.UseUSB)
	coord.Slots.LoadLocks(cfg.JoystickLocks)
	if cfg.GameData != "" {
		coord.SetGameData(cfg.GameData)
	}
	coord.SetPracticeTiming(cfg.PracticeTiming.ToPractice())

	ctx, cancel := context.WithCancel(context.Background())

	engine := connection.NewEngine(coord, coord, coord.Team, coord.UseUSB)
	engine.Resolver = connection.PionMDNSResolver{}
	coord.Stream = engine

	usbSource := input.NewUSBSource(gousb.ID(cfg.JoystickVendorID), gousb.ID(cfg.JoystickProductID))
	poller := input.NewPoller(usbSource, coord.Slots, coord)
	coord.Rescan = func() {}

	inputIntents := make(chan input.Intent, 8)
	dispatcher := hotkey.NewDispatcher(coord.Actions)
	hotkeyStop := make(chan struct{})

	go engine.Run(ctx)
	go poller.Run(ctx, inputIntents)
	go coord.RunPracticeClock(ctx)
	go coord.RunHotkeyActions(hotkeyStop)
	go coord.RunInputIntents(ctx, inputIntents)
	go func() {
		if err := dispatcher.Run(ctx, hotkey.StubBackend{}); err != nil {
			logger.Printf("hotkey: backend stopped: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		shutdown(cancel, hotkeyStop, usbSource, coord, cfg)
		os.Exit(0)
	}()

	model := ui.NewModel(coord)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "station: %v\n", err)
		shutdown(cancel, hotkeyStop, usbSource, coord, cfg)
		os.Exit(1)
	}

	shutdown(cancel, hotkeyStop, usbSource, coord, cfg)
}

// shutdown cancels every background task and persists whatever of the
// session is worth keeping across a restart (team number, USB mode,
// joystick locks) before the process exits.
func shutdown(cancel context.CancelFunc, hotkeyStop chan struct{}, source *input.USBSource, coord *coordinator.Coordinator, cfg config.Document) {
	cancel()
	close(hotkeyStop)
	_ = source.Close()

	cfg.TeamNumber = coord.Team()
	cfg.UseUSB = coord.UseUSB()
	cfg.JoystickLocks = coord.Slots.Locks()

	if err := config.Save(cfg); err != nil {
		applog.Get().Printf("config: save on shutdown failed: %v", err)
	}
}
