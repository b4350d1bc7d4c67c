package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/MrSnakeDoc/coursemark/internal/app"
	"github.com/MrSnakeDoc/coursemark/internal/config"
	"github.com/MrSnakeDoc/coursemark/internal/version"
)

func main() {
	cliApp := &cli.App{
		Name:    "coursemark",
		Usage:   "Course bookmark service",
		Version: version.Version,
		Description: `Stores per-user bookmarks of course blocks, each with a snapshot of the
block name and its breadcrumb. Configuration comes from COURSEMARK_*
environment variables, optionally loaded from a .env file.

Examples:
  coursemark serve
  COURSEMARK_STORE=postgres COURSEMARK_SQL_DSN=... coursemark migrate
  coursemark version`,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Load course outlines and serve the HTTP API",
				Action: func(c *cli.Context) error {
					a, err := app.New(c.Context, config.Load())
					if err != nil {
						return err
					}
					return a.Run()
				},
			},
			{
				Name:  "migrate",
				Usage: "Create or update the store schema and exit",
				Action: func(c *cli.Context) error {
					return app.Migrate(c.Context, config.Load())
				},
			},
			{
				Name:  "version",
				Usage: "Print build information",
				Action: func(c *cli.Context) error {
					fmt.Println(version.String())
					return nil
				},
			},
		},
		DefaultCommand: "serve",
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatalf("❌ coursemark failed: %v", err)
	}
}
