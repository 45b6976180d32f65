package check

import (
	"context"

	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"

	"github.com/heiyeluren/koala"
	"github.com/heiyeluren/koala/internal/cli/root"
)

func init() {
	cmd := root.Command("check", "Run the browse step for one set of params.")
	args := cmd.Arg("params", "KEY=VALUE pairs").Required().Strings()
	writeThrough := cmd.Flag("write-through", "Also apply the update step").Bool()

	cmd.Action(func(_ *kingpin.ParseContext) error {
		params, err := root.ParseParams(*args)
		if err != nil {
			return err
		}
		client, err := root.Init()
		if err != nil {
			return err
		}

		var opts []koala.CallOption
		if *writeThrough {
			opts = append(opts, koala.WriteThrough())
		}
		result, err := client.Check(context.Background(), params, opts...)
		if err != nil {
			return err
		}
		if result.Hit() {
			log.WithField("code", *result.Code).Info("Rule matched")
		}
		return root.Print(result)
	})

	complete := root.Command("check-complete", "Run the browse step and list every matching rule.")
	completeArgs := complete.Arg("params", "KEY=VALUE pairs").Required().Strings()

	complete.Action(func(_ *kingpin.ParseContext) error {
		params, err := root.ParseParams(*completeArgs)
		if err != nil {
			return err
		}
		client, err := root.Init()
		if err != nil {
			return err
		}

		results, err := client.CheckComplete(context.Background(), params)
		if err != nil {
			return err
		}
		return root.Print(results)
	})
}
