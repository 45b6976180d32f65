package multicheck

import (
	"context"

	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"

	"github.com/heiyeluren/koala"
	"github.com/heiyeluren/koala/internal/cli/root"
)

func init() {
	cmd := root.Command("multi-check", "Check several param sets in one request.")
	jobs := cmd.Flag("job", "One job as a query string, e.g. 'qid=1&ip=10.0.0.1'. Repeatable.").Required().Strings()

	cmd.Action(func(_ *kingpin.ParseContext) error {
		batch := make([]koala.Params, 0, len(*jobs))
		for _, raw := range *jobs {
			params, err := root.ParseJob(raw)
			if err != nil {
				return err
			}
			batch = append(batch, params)
		}

		client, err := root.Init()
		if err != nil {
			return err
		}

		results, err := client.MultiCheck(context.Background(), batch)
		if err != nil {
			return err
		}
		if len(results) != len(batch) {
			log.Warnf("Engine answered %d of %d jobs", len(results), len(batch))
		}
		return root.Print(results)
	})
}
