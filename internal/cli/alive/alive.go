package alive

import (
	"context"

	"github.com/alecthomas/kingpin/v2"
	"github.com/apex/log"

	"github.com/heiyeluren/koala/internal/cli/root"
)

func init() {
	cmd := root.Command("alive", "Probe the engine and its storage backend.")

	cmd.Action(func(_ *kingpin.ParseContext) error {
		client, err := root.Init()
		if err != nil {
			return err
		}

		status, err := client.MonitorAlive(context.Background(), nil)
		if err != nil {
			return err
		}
		log.WithField("server", client.Server()).Info("Engine answered")
		return root.Print(status)
	})
}
