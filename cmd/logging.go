package cmd

import (
	"github.com/urfave/cli"

	"github.com/prism-render/prism/pkg/log"
)

var logger = log.New("prism")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
