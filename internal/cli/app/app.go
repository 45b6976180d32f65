package app

import (
	"github.com/heiyeluren/koala/internal/cli/root"
)

// Run parses args and executes the selected command.
func Run(args []string) error {
	_, err := root.Cmd.Parse(args)
	return err
}
