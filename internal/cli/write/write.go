package write

import (
	"context"

	"github.com/alecthomas/kingpin/v2"

	"github.com/heiyeluren/koala/internal/cli/root"
)

func init() {
	cmd := root.Command("write", "Apply the update step for params checked earlier.")
	args := cmd.Arg("params", "KEY=VALUE pairs").Required().Strings()

	cmd.Action(func(_ *kingpin.ParseContext) error {
		params, err := root.ParseParams(*args)
		if err != nil {
			return err
		}
		client, err := root.Init()
		if err != nil {
			return err
		}

		result, err := client.Write(context.Background(), params)
		if err != nil {
			return err
		}
		return root.Print(result)
	})
}
