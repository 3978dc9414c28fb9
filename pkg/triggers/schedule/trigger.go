// Package schedule fires live-mode node triggers on a cron schedule, the
// headless counterpart of a GUI control re-firing an interactive node.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wireflow/wireflow/pkg/eventbus"
	"github.com/wireflow/wireflow/pkg/events"
)

type ScheduleTrigger struct {
	ID       string
	CronExpr string
	GraphID  string
	NodeID   string
	Enabled  bool

	cron      *cron.Cron
	publisher eventbus.EventPublisher
	logger    *slog.Logger
}

func NewScheduleTrigger(config map[string]interface{}, publisher eventbus.EventPublisher, logger *slog.Logger) (*ScheduleTrigger, error) {
	id, _ := config["id"].(string)
	cronExpr, _ := config["cron"].(string)
	graphID, _ := config["graph_id"].(string)
	nodeID, _ := config["node_id"].(string)

	trigger := &ScheduleTrigger{
		ID:        id,
		CronExpr:  cronExpr,
		GraphID:   graphID,
		NodeID:    nodeID,
		Enabled:   true,
		publisher: publisher,
		logger: logger.With(
			"module", "schedule_trigger",
			"id", id,
			"cron", cronExpr,
			"node_id", nodeID,
		),
	}
	if err := trigger.Validate(); err != nil {
		return nil, err
	}

	return trigger, nil
}

func (t *ScheduleTrigger) Validate() error {
	if t.ID == "" {
		return errors.New("schedule trigger ID is required")
	}

	if t.NodeID == "" {
		return errors.New("schedule trigger node ID is required")
	}

	if t.CronExpr == "" {
		return errors.New("schedule trigger cron expression is required")
	}

	if _, err := cron.ParseStandard(t.CronExpr); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	return nil
}

func (t *ScheduleTrigger) Start(ctx context.Context) error {
	if !t.Enabled {
		t.logger.Info("ScheduleTrigger is disabled.")

		return nil
	}

	t.logger.Info("Starting ScheduleTrigger")

	t.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	id, err := t.cron.AddFunc(t.CronExpr, t.run)

	t.logger.Info("Adding cron job for trigger", "id", id)

	if err != nil {
		return fmt.Errorf("failed to add cron job for trigger %s: %w", t.ID, err)
	}

	t.cron.Start()

	return nil
}

func (t *ScheduleTrigger) run() {
	t.logger.Info("Cron job triggered")

	event := events.NodeTriggered{
		BaseEvent: events.NewBaseEvent(events.NodeTriggeredEvent, t.GraphID),
		NodeID:    t.NodeID,
		TriggerData: map[string]interface{}{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	}

	if err := t.publisher.Publish(context.Background(), t.GraphID, event); err != nil {
		t.logger.Error("Error publishing node trigger", "error", err)
	}
}

func (t *ScheduleTrigger) Stop(ctx context.Context) error {
	t.logger.Info("Stopping ScheduleTrigger", "id", t.ID)

	if t.cron != nil {
		t.cron.Stop()
	}

	return nil
}
