package config

import "flag"

// flagValues holds the command-line overrides registered on one FlagSet.
type flagValues struct {
	config  string
	debug   bool
	width   int
	height  int
	source  string
	profile bool
	logFile string
	save    bool
}

var commandLine = registerFlags(flag.CommandLine)

func registerFlags(fs *flag.FlagSet) *flagValues {
	fv := &flagValues{}
	fs.StringVar(&fv.config, "config", "", "Path to config file (.yaml, .yml or .toml)")
	fs.BoolVar(&fv.debug, "debug", false, "Enable debug logging")
	fs.IntVar(&fv.width, "width", 0, "Window width")
	fs.IntVar(&fv.height, "height", 0, "Window height")
	fs.StringVar(&fv.source, "source", "", "Model name, .gltf/.glb path or URL to open")
	fs.BoolVar(&fv.profile, "profile", false, "Log frame stats once per second")
	fs.StringVar(&fv.logFile, "log-file", "", "Also write logs to this file")
	fs.BoolVar(&fv.save, "save-config", false, "Write the effective config to --config, or the user config directory, and exit")
	return fv
}

// ParseFlags parses command-line flags. Call this early in main().
// A positional argument is accepted as the source when --source is not given.
func ParseFlags() {
	flag.Parse()
	if commandLine.source == "" && flag.NArg() > 0 {
		commandLine.source = flag.Arg(0)
	}
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return commandLine.config
}

// SaveRequested reports whether --save-config was passed.
func SaveRequested() bool {
	return commandLine.save
}

// apply applies CLI flag overrides to the config.
func (fv *flagValues) apply(cfg *Config) {
	if fv.debug {
		cfg.Logging.Level = "debug"
	}
	if fv.width > 0 {
		cfg.Window.Width = fv.width
	}
	if fv.height > 0 {
		cfg.Window.Height = fv.height
	}
	if fv.source != "" {
		cfg.Source = fv.source
	}
	if fv.profile {
		cfg.Profiler.Enabled = true
	}
	if fv.logFile != "" {
		cfg.Logging.LogFile = fv.logFile
	}
}
