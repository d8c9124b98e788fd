package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophdraft/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   address and port of the backend server
//	-t string   transport, grpc or http
//	-d int      autosave delay in seconds
//	-j string   path of the local journal database
//	-l string   log level
//
// os.Args is filtered with flagx.FilterArgs so flags owned by other loaders
// do not break parsing.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-d", "-j", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.Transport, "t", cfg.Transport, "transport: grpc or http")
	delay := fs.Int("d", int(cfg.AutosaveDelay.Seconds()), "autosave delay (in seconds)")
	fs.StringVar(&cfg.JournalPath, "j", cfg.JournalPath, "local journal database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// -d is whole seconds; only an explicit flag replaces a finer value
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "d" {
			cfg.AutosaveDelay = time.Duration(*delay) * time.Second
		}
	})
}
