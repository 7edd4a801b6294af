// ABOUTME: CLI flag parsing using stdlib flag package
// ABOUTME: Supports --url, --config, --verbose, --log-file, --download, --version

package main

import (
	"flag"
	"io"
)

type cliArgs struct {
	url        string
	configPath string
	verbose    bool
	logFile    string
	download   string
	version    bool
}

func parseFlags(name string, argv []string, stderr io.Writer) (cliArgs, error) {
	var args cliArgs
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&args.url, "url", "", "Backend base URL (default http://localhost:8000)")
	fs.StringVar(&args.configPath, "config", "", "Settings file (default ~/.seekdeck/config.yaml)")
	fs.BoolVar(&args.verbose, "verbose", false, "Debug logging")
	fs.StringVar(&args.logFile, "log-file", "", "Log file path, or - for stderr")
	fs.StringVar(&args.download, "download", "", "Download the project zip into `dir` and exit")
	fs.BoolVar(&args.version, "version", false, "Show version and exit")

	if err := fs.Parse(argv); err != nil {
		return cliArgs{}, err
	}
	return args, nil
}

// logLevel maps --verbose onto a level override.
func (a cliArgs) logLevel() string {
	if a.verbose {
		return "debug"
	}
	return ""
}
