// Package root holds the koalactl root command and the state shared by
// its subcommands.
package root

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"

	"github.com/heiyeluren/koala"
)

// Cmd is the root command
var Cmd = kingpin.New("koalactl", "Query a koala rule engine.")

// Command is syntax sugar for defining sub-commands
var Command = Cmd.Command

// Init builds the engine client from the global flags. It is set by the
// root PreAction, so subcommands may only call it from their Action.
var Init func() (*koala.Client, error)

// Stdout receives command output.
var Stdout io.Writer = os.Stdout

var settings Settings

// Verbose reports whether --verbose was given.
func Verbose() bool {
	return settings.Verbose
}

func init() {
	Cmd.Version(koala.Version)

	Cmd.Flag("config", "Read host, port and timeout from a YAML file").Short('c').StringVar(&settings.ConfigPath)
	Cmd.Flag("host", "Engine host").Short('H').Envar("KOALA_HOST").StringVar(&settings.Host)
	Cmd.Flag("port", "Engine port").Short('p').Envar("KOALA_PORT").IntVar(&settings.Port)
	Cmd.Flag("timeout", "Per-request timeout").DurationVar(&settings.Timeout)
	Cmd.Flag("verbose", "Enable verbose log output.").Short('v').BoolVar(&settings.Verbose)

	Cmd.PreAction(func(ctx *kingpin.ParseContext) error {
		log.SetHandler(cli.Default)
		if settings.Verbose {
			log.SetLevel(log.DebugLevel)
			log.Debugf("koalactl version %s", koala.Version)
		}

		Init = settings.Client
		return nil
	})
}

// Settings are the global flags.
type Settings struct {
	ConfigPath string
	Host       string
	Port       int
	Timeout    time.Duration
	Verbose    bool
}

// Resolve merges the config file, if any, with the flags. Flags win.
func (s Settings) Resolve() (*koala.FileConfig, error) {
	fc := &koala.FileConfig{}
	if s.ConfigPath != "" {
		log.Debugf("Reading config file from %s", s.ConfigPath)
		loaded, err := koala.LoadConfig(s.ConfigPath)
		if err != nil {
			return nil, err
		}
		fc = loaded
	}

	if s.Host != "" {
		fc.Host = s.Host
	}
	if s.Port != 0 {
		fc.Port = s.Port
	}
	if s.Timeout != 0 {
		fc.Timeout = s.Timeout
	}
	return fc, nil
}

// Client builds the engine client described by s.
func (s Settings) Client() (*koala.Client, error) {
	fc, err := s.Resolve()
	if err != nil {
		return nil, err
	}

	options := []koala.Option{koala.WithUserAgent(koala.UserAgent())}
	if fc.Timeout != 0 {
		options = append(options, koala.WithTimeout(fc.Timeout))
	}
	if s.Verbose {
		options = append(options, koala.WithLogger(koala.NewApexLogger(log.Log)), koala.WithDebug())
	}

	log.WithField("server", fc.Address()).Debug("Connecting to engine")
	return koala.New(fc.Config, options...)
}

// Print writes v to Stdout as indented JSON.
func Print(v any) error {
	enc := json.NewEncoder(Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
