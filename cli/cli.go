package cli

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

// Options holds all the command-line flag values.
type Options struct {
	ConfigPath string
	Listen     string
	Message    string
	Clipboard  bool
	Analyze    bool
	Write      bool
	NoApply    bool
	Verbose    bool
	LogFile    string
	Version    bool
}

// Parse defines and parses command-line flags using pflag.
func Parse(args []string, output io.Writer) (*Options, error) {
	opts := &Options{}
	fs := pflag.NewFlagSet("nexus", pflag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&opts.ConfigPath, "config", "", "Path to the config file (default: <config dir>/config.toml).")
	fs.StringVarP(&opts.Listen, "listen", "l", "", "Neovim RPC address (default: $NVIM or $NVIM_LISTEN_ADDRESS).")
	fs.StringVarP(&opts.Message, "message", "m", "", "Ask once and print the reply instead of opening the panel.")
	fs.BoolVarP(&opts.Clipboard, "clipboard", "c", false, "Read the one-shot message from the clipboard.")
	fs.BoolVarP(&opts.Analyze, "analyze", "a", false, "Start by analyzing the current file.")
	fs.BoolVarP(&opts.Write, "write", "w", false, "Save the buffer after applying changes.")
	fs.BoolVar(&opts.NoApply, "no-apply", false, "Do not offer to apply suggested changes in one-shot mode.")
	fs.BoolVarP(&opts.Verbose, "verbose", "v", false, "Log debug messages.")
	fs.StringVar(&opts.LogFile, "log-file", "", "Log file path (default: <state dir>/nexus.log).")
	fs.BoolVar(&opts.Version, "version", false, "Print the version and exit.")

	fs.Usage = func() {
		fmt.Fprintln(output, "Usage: nexus [flags]")
		fmt.Fprintln(output, "\nChat with Gemini about the file open in Neovim and apply its suggestions.")
		fmt.Fprintln(output, "\nExamples:")
		fmt.Fprintln(output, "  nexus                       open the side panel")
		fmt.Fprintln(output, "  nexus -m 'add doc comments' ask once and print the reply")
		fmt.Fprintln(output, "  echo 'explain' | nexus      read the message from stdin")
		fmt.Fprintln(output, "\nFlags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.Clipboard && opts.Message != "" {
		return nil, fmt.Errorf("--clipboard and --message are mutually exclusive")
	}
	return opts, nil
}
