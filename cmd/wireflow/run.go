package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/wireflow/wireflow/pkg/codehost"
	"github.com/wireflow/wireflow/pkg/config"
	"github.com/wireflow/wireflow/pkg/executor"
	"github.com/wireflow/wireflow/pkg/graph"
	"github.com/wireflow/wireflow/pkg/log"
	"github.com/wireflow/wireflow/pkg/persistence/file"
)

func runGraph(ctx context.Context, cmd *cli.Command) error {
	graphID := cmd.Args().First()
	if graphID == "" {
		return errors.New("graph ID is required")
	}

	cfg := config.Config{
		LogLevel:       cmd.String("log-level"),
		TraceExecution: cmd.Bool("trace"),
		StopOnError:    cmd.Bool("stop-on-error"),
	}
	log.Setup(cfg.LogLevel, cmd.String("log-format"))

	persistence := file.NewFilePersistence(cmd.String("data-dir"))

	record, err := persistence.GraphByID(graphID)
	if err != nil {
		return fmt.Errorf("failed to load graph %s: %w", graphID, err)
	}

	g, err := graph.Load(record)
	if err != nil {
		return fmt.Errorf("failed to build graph %s: %w", graphID, err)
	}

	host := codehost.NewExprHost(log.WithModule("exprhost"))

	result, err := executor.NewExecutor(g, host, cfg, nil).Run(ctx)
	if err != nil {
		return err
	}

	for _, line := range result.Log {
		fmt.Println(line)
	}

	if !result.Success {
		return fmt.Errorf("run %s finished with failures", result.ExecutionID)
	}

	return nil
}

func validateGraph(cmd *cli.Command) error {
	graphID := cmd.Args().First()
	if graphID == "" {
		return errors.New("graph ID is required")
	}

	persistence := file.NewFilePersistence(cmd.String("data-dir"))

	record, err := persistence.GraphByID(graphID)
	if err != nil {
		return err
	}

	if _, err := graph.Load(record); err != nil {
		return err
	}

	fmt.Printf("graph %s is valid: %d nodes, %d connections\n", graphID, len(record.Nodes), len(record.Connections))

	return nil
}

func listGraphs(cmd *cli.Command) error {
	persistence := file.NewFilePersistence(cmd.String("data-dir"))

	records, err := persistence.Graphs()
	if err != nil {
		return err
	}

	for _, record := range records {
		fmt.Printf("%s\t%s\t(%d nodes)\n", record.ID, record.Name, len(record.Nodes))
	}

	return nil
}
