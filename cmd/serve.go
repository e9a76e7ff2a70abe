package cmd

import (
	"github.com/urfave/cli"

	"github.com/prism-render/prism/web/server"
)

// Serve starts the interactive render server.
func Serve(ctx *cli.Context) error {
	setupLogging(ctx)
	loadEnv()

	srv := server.New(server.Config{
		Port:      ctx.Int("port"),
		ScenesDir: ctx.String("scenes"),
		StaticDir: ctx.String("static"),
	}, logger)

	return srv.Start()
}
