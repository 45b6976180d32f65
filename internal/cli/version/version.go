package version

import (
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/heiyeluren/koala"
	"github.com/heiyeluren/koala/internal/cli/root"
)

func init() {
	cmd := root.Command("version", "Show version. With --verbose, print build metadata as JSON.")
	cmd.Action(func(_ *kingpin.ParseContext) error {
		if root.Verbose() {
			return root.Print(koala.GetVersionInfo())
		}
		fmt.Fprintln(root.Stdout, koala.GetVersion())
		return nil
	})
}
