package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/1broseidon/paneswitch/internal/config"
	"github.com/1broseidon/paneswitch/internal/ipc"
	"github.com/1broseidon/paneswitch/internal/palette"
	"github.com/1broseidon/paneswitch/internal/tui"
)

func runPick(args []string) int {
	fs := flag.NewFlagSet("pick", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	menu := fs.String("menu", "", "Use an external launcher instead of the terminal: auto, rofi, fuzzel, wofi or dmenu")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: paneswitch pick [--menu LAUNCHER]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Search windows and activate the chosen one.")
		fmt.Fprintln(os.Stderr, "Prints the activated window id on success.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	client := ipc.NewClient()
	if *menu != "" {
		return pickWithMenu(client, *menu)
	}

	w, ok, err := tui.RunPicker(client)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !ok {
		return 1
	}
	fmt.Println(w.ID)
	return 0
}

func pickWithMenu(client *ipc.Client, name string) int {
	backend, err := palette.NewBackend(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	windows, err := client.List()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	w, err := palette.PickWindow(backend, windows)
	if errors.Is(err, palette.ErrCancelled) {
		return 1
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := client.Activate(w.ID); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(w.ID)
	return 0
}

func runSettings(args []string) int {
	fs := flag.NewFlagSet("settings", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/paneswitch/config.yaml)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if err := tui.RunSettings(*path); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// slogLevelFromConfig reads log_level from the default config, falling back
// to info when the config cannot be loaded.
func slogLevelFromConfig() slog.Level {
	cfg, err := config.Load()
	if err != nil {
		return slog.LevelInfo
	}
	return cfg.SlogLevel()
}
