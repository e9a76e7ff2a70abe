package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/prism-render/prism/cmd"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "prism"
	app.Usage = "render scenes with progressive path tracing"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a scene to a PNG file",
			Description: `
Load a JSON scene description, render it over several progressive passes
and write the final image as a PNG. Texture and HDRI paths in the scene
file resolve relative to the scene file's directory.

The rendered image can optionally be downscaled into a preview file and
uploaded to an S3-compatible bucket. S3 credentials are read from the
S3_ACCESS_KEY, S3_SECRET_KEY, S3_ENDPOINT and S3_REGION environment
variables, which may also be supplied via a .env file.`,
			ArgsUsage: "scene.json",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Usage: "image width; 0 uses the scene's value",
				},
				cli.IntFlag{
					Name:  "height",
					Usage: "image height; 0 uses the scene's value",
				},
				cli.IntFlag{
					Name:  "spp",
					Usage: "samples per pixel; 0 uses the scene's value",
				},
				cli.IntFlag{
					Name:  "bounces",
					Usage: "path bounce limit; 0 uses the scene's value",
				},
				cli.IntFlag{
					Name:  "passes",
					Value: 7,
					Usage: "number of progressive passes",
				},
				cli.IntFlag{
					Name:  "tile-size",
					Value: 64,
					Usage: "tile edge length in pixels",
				},
				cli.IntFlag{
					Name:  "workers",
					Usage: "parallel render workers; 0 uses all CPUs",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "render.png",
					Usage: "image filename for the rendered frame",
				},
				cli.IntFlag{
					Name:  "preview-width",
					Usage: "also write a downscaled preview of this width",
				},
				cli.StringFlag{
					Name:  "s3-bucket",
					Usage: "upload the rendered image to this s3 bucket",
				},
				cli.StringFlag{
					Name:  "s3-key",
					Usage: "object key for the s3 upload; defaults to the output filename",
				},
			},
			Action: cmd.RenderScene,
		},
		{
			Name:  "serve",
			Usage: "serve interactive progressive renders over http",
			Description: `
Start a web server that streams progressive render results to clients
over server-sent events. Scenes are loaded by name from the scenes
directory.`,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "port",
					Value: 8080,
					Usage: "port to listen on",
				},
				cli.StringFlag{
					Name:  "scenes",
					Value: "scenes",
					Usage: "directory holding JSON scene descriptions",
				},
				cli.StringFlag{
					Name:  "static",
					Value: "static",
					Usage: "directory with the web frontend",
				},
			},
			Action: cmd.Serve,
		},
	}

	app.Run(os.Args)
}
