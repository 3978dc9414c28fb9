package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:                  "wireflow",
		Usage:                 "Run and inspect node graphs",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			{
				Name:      "run",
				Aliases:   []string{"r"},
				Usage:     "Batch-execute a saved graph",
				ArgsUsage: "<graph-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data-dir",
						Aliases: []string{"d"},
						Usage:   "Directory holding saved graphs",
						Value:   "./data",
					},
					&cli.StringFlag{
						Name:  "log-level",
						Usage: "debug, info, warn, or error",
						Value: "info",
					},
					&cli.StringFlag{
						Name:  "log-format",
						Usage: "text or json",
						Value: "text",
					},
					&cli.BoolFlag{
						Name:  "trace",
						Usage: "Log every node invocation with its inputs",
					},
					&cli.BoolFlag{
						Name:  "stop-on-error",
						Usage: "Abort the run at the first failing node",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runGraph(ctx, cmd)
				},
			},
			{
				Name:      "validate",
				Aliases:   []string{"v"},
				Usage:     "Check a saved graph against the schema and structure",
				ArgsUsage: "<graph-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data-dir",
						Aliases: []string{"d"},
						Usage:   "Directory holding saved graphs",
						Value:   "./data",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return validateGraph(cmd)
				},
			},
			{
				Name:  "list",
				Usage: "List saved graphs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data-dir",
						Aliases: []string{"d"},
						Usage:   "Directory holding saved graphs",
						Value:   "./data",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return listGraphs(cmd)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
