package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/paneswitch/internal/config"
)

func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  paneswitch config path")
	fmt.Fprintln(w, "  paneswitch config validate [--path PATH]")
	fmt.Fprintln(w, "  paneswitch config print [--path PATH] [--defaults] [--format yaml|toml]")
	fmt.Fprintln(w, "  paneswitch config explain [--path PATH] <key>")
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printConfigUsage(os.Stderr)
		return 2
	}
	return runConfigCommand(os.Stdout, args[0], args[1:])
}

func runConfigCommand(out io.Writer, sub string, args []string) int {
	fs := flag.NewFlagSet(sub, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/paneswitch/config.yaml)")

	switch sub {
	case "path":
		if err := fs.Parse(args); err != nil {
			return 2
		}
		p := *path
		if p == "" {
			var err error
			if p, err = config.DefaultConfigPath(); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}
		fmt.Fprintln(out, p)
		return 0

	case "validate":
		if err := fs.Parse(args); err != nil {
			return 2
		}
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Fprintf(out, "config: ok (%d file(s))\n", len(res.Files))
		return 0

	case "print":
		defaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		format := fs.String("format", "yaml", "Output format: yaml or toml")
		if err := fs.Parse(args); err != nil {
			return 2
		}
		f := config.Format(strings.ToLower(*format))
		if f != config.FormatYAML && f != config.FormatTOML {
			fmt.Fprintf(os.Stderr, "unknown format %q\n", *format)
			return 2
		}
		cfg := config.DefaultConfig()
		if !*defaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		data, err := cfg.Marshal(f)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Fprint(out, string(data))
		return 0

	case "explain":
		if err := fs.Parse(args); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <key>; known keys:")
			for _, k := range config.Keys() {
				fmt.Fprintln(os.Stderr, "  "+k)
			}
			return 2
		}
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		key := fs.Arg(0)
		value, src, err := config.Explain(res, key)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		data, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Fprintf(out, "key: %s\n", key)
		fmt.Fprintf(out, "source: %s\n", src)
		fmt.Fprintf(out, "value: %s", string(data))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", sub)
		return 2
	}
}
