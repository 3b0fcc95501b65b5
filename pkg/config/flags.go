package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// Parse builds a Config from command-line arguments. When -config names a
// YAML file it is loaded first and explicitly set flags override it.
// Positional arguments are appended to the targets. Defaults are applied but
// the result is not validated.
func Parse(name string, args []string, output io.Writer) (*Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)

	var (
		configPath  string
		targets     stringList
		folders     stringList
		prefixes    stringList
		listenFor   stringList
		extension   string
		printAll    bool
		printLogged bool
		shared      bool
		logLevel    string
		logFormat   string
	)
	fs.StringVar(&configPath, "config", "", "path to a YAML configuration file")
	fs.Var(&targets, "ws", "websocket URL to log (repeatable)")
	fs.Var(&targets, "websockets", "alias for -ws")
	fs.Var(&folders, "f", "output folder, one for all targets or one per target (repeatable)")
	fs.Var(&folders, "folder", "alias for -f")
	fs.Var(&prefixes, "p", "file name prefix, one for all targets or one per target (repeatable)")
	fs.Var(&prefixes, "prefix", "alias for -p")
	fs.Var(&listenFor, "l", "message type to persist (repeatable, default: everything)")
	fs.Var(&listenFor, "listen_for", "alias for -l")
	fs.StringVar(&extension, "e", DefaultExtension, "file extension")
	fs.StringVar(&extension, "extension", DefaultExtension, "alias for -e")
	fs.StringVar(&extension, "extention", DefaultExtension, "alias for -e")
	fs.BoolVar(&printAll, "print_all", false, "echo every message that is not persisted by type")
	fs.BoolVar(&printLogged, "print_logged", false, "echo messages persisted by type")
	fs.BoolVar(&shared, "shared", false, "let targets with the same folder and prefix share a file")
	fs.StringVar(&logLevel, "log-level", DefaultLogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&logFormat, "log-format", DefaultLogFormat, "log format: text, json")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if configPath != "" {
		loaded, err := Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if len(targets) > 0 || fs.NArg() > 0 {
		cfg.Targets = append(append([]string(nil), targets...), fs.Args()...)
	}
	if len(folders) > 0 {
		cfg.Folders = folders
	}
	if len(prefixes) > 0 {
		cfg.Prefixes = prefixes
	}
	if len(listenFor) > 0 {
		cfg.ListenFor = listenFor
	}
	if set["e"] || set["extension"] || set["extention"] {
		cfg.Extension = extension
	}
	if set["print_all"] {
		cfg.PrintAll = printAll
	}
	if set["print_logged"] {
		cfg.PrintLogged = printLogged
	}
	if set["shared"] {
		cfg.Shared = shared
	}
	if set["log-level"] {
		cfg.Log.Level = logLevel
	}
	if set["log-format"] {
		cfg.Log.Format = logFormat
	}

	cfg.ApplyDefaults()
	if len(cfg.Targets) == 0 {
		fs.Usage()
		return nil, fmt.Errorf("no websocket target given")
	}
	return cfg, nil
}
