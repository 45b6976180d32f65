package main

import (
	"os"

	"github.com/apex/log"

	"github.com/heiyeluren/koala/internal/cli/app"
	_ "github.com/heiyeluren/koala/internal/cli/alive"
	_ "github.com/heiyeluren/koala/internal/cli/check"
	_ "github.com/heiyeluren/koala/internal/cli/multicheck"
	_ "github.com/heiyeluren/koala/internal/cli/version"
	_ "github.com/heiyeluren/koala/internal/cli/write"
)

func main() {
	if err := app.Run(os.Args[1:]); err != nil {
		log.WithError(err).Fatal("koalactl failed")
	}
}
