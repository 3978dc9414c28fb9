package executor

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wireflow/wireflow/pkg/eventbus"
	"github.com/wireflow/wireflow/pkg/events"
	"github.com/wireflow/wireflow/pkg/models"
)

// LiveExecutor is the interactive variant: instead of one start-to-end
// pass, execution re-enters from a triggered node and proceeds forward
// through its downstream execution-edge successors only. Data inputs those
// nodes need are resolved dependency-first against the warm object store.
type LiveExecutor struct {
	*Executor

	liveMode   bool
	liveActive bool
	logger     *log.Entry
}

// NewLiveExecutor wraps a batch executor for live use. The object store is
// shared, so a batch pass can seed state for later triggers.
func NewLiveExecutor(e *Executor) *LiveExecutor {
	return &LiveExecutor{
		Executor: e,
		logger:   e.logger.WithFields(log.Fields{"module": "live_executor"}),
	}
}

// StartLive enables live mode and begins accepting trigger events.
func (e *LiveExecutor) StartLive() {
	e.liveMode = true
	e.liveActive = true
	e.logger.Info("Live mode started")
}

// SetLiveMode toggles live mode. Turning it off while live is active
// pauses: further triggers are ignored but already-produced state is kept.
func (e *LiveExecutor) SetLiveMode(on bool) {
	e.liveMode = on
}

// StopLive leaves live mode entirely and discards nothing; call
// RestartGraph to reset produced state.
func (e *LiveExecutor) StopLive() {
	e.liveMode = false
	e.liveActive = false
}

// Accepting reports whether trigger events are currently honored.
func (e *LiveExecutor) Accepting() bool {
	return e.liveMode && e.liveActive
}

// RestartGraph resets all produced state and re-primes the source nodes
// without a full run: sources execute so their outputs are available to
// the next trigger, everything else stays cold.
func (e *LiveExecutor) RestartGraph(ctx context.Context) error {
	e.store.Reset()

	order, err := e.dataOrder()
	if err != nil {
		return err
	}

	for _, node := range order {
		if !e.isSource(node) {
			continue
		}

		if err := e.runNode(ctx, node); err != nil {
			e.logger.WithFields(log.Fields{"node_id": node.ID}).Warnf("Priming source failed: %v", err)
		}
	}

	e.logger.Info("Graph state restarted")

	return nil
}

// Trigger re-enters execution from the given node. When live mode is off
// or not yet started the trigger is ignored without touching state.
func (e *LiveExecutor) Trigger(ctx context.Context, nodeID string) (*Result, error) {
	if !e.Accepting() {
		e.logger.WithFields(log.Fields{"node_id": nodeID}).Debug("Trigger ignored, live mode not accepting")

		return nil, nil
	}

	start, ok := e.graph.NodeByID(nodeID)
	if !ok {
		return nil, fmt.Errorf("trigger node %s not found", nodeID)
	}

	executionID := generateExecutionID()
	logger := e.logger.WithFields(log.Fields{"execution_id": executionID, "trigger_node": nodeID})
	logger.Info("Live trigger")

	e.publish(ctx, events.ExecutionStarted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionStartedEvent, e.graph.ID),
		ExecutionID: executionID,
		GraphName:   e.graph.Name,
		Live:        true,
	})

	affected := e.execDownstream(start)

	order, err := e.dataOrder()
	if err != nil {
		return nil, err
	}

	result := &Result{
		ExecutionID: executionID,
		Order:       make([]string, 0, len(affected)),
		Outcomes:    make(map[string]NodeOutcome, len(affected)),
		Log:         make([]string, 0),
	}

	started := time.Now()
	failed := 0

	var cancelled error

	for _, node := range order {
		if !affected[node.ID] {
			continue
		}

		if err := ctx.Err(); err != nil {
			cancelled = err
			result.logf("trigger cancelled: %v", err)

			break
		}

		if err := e.resolveDataInputs(ctx, node, affected, make(map[string]bool)); err != nil {
			failed++
			result.Outcomes[node.ID] = NodeOutcome{NodeID: node.ID, Status: StatusSkipped, Error: err.Error()}
			result.logf("node %s skipped: %v", node.ID, err)

			continue
		}

		nodeStarted := time.Now()

		if err := e.runNode(ctx, node); err != nil {
			failed++
			result.Outcomes[node.ID] = NodeOutcome{NodeID: node.ID, Status: StatusError, Error: err.Error()}
			result.logf("node %s (%s) failed: %v", node.ID, node.Title, err)
			logger.WithFields(log.Fields{"node_id": node.ID}).Errorf("Node failed: %v", err)

			continue
		}

		result.Order = append(result.Order, node.ID)
		result.Outcomes[node.ID] = NodeOutcome{
			NodeID:     node.ID,
			Status:     StatusSuccess,
			DurationMs: time.Since(nodeStarted).Milliseconds(),
		}
		result.logf("node %s (%s) executed", node.ID, node.Title)
	}

	result.Success = failed == 0 && cancelled == nil

	durationMs := time.Since(started).Milliseconds()

	if result.Success {
		e.publish(ctx, events.ExecutionCompleted{
			BaseEvent:     events.NewBaseEvent(events.ExecutionCompletedEvent, e.graph.ID),
			ExecutionID:   executionID,
			DurationMs:    durationMs,
			NodesExecuted: len(result.Order),
		})
	} else {
		errMsg := fmt.Sprintf("%d node(s) failed", failed)
		if cancelled != nil {
			errMsg = fmt.Sprintf("trigger cancelled: %v", cancelled)
		}

		e.publish(ctx, events.ExecutionFailed{
			BaseEvent:     events.NewBaseEvent(events.ExecutionFailedEvent, e.graph.ID),
			ExecutionID:   executionID,
			DurationMs:    durationMs,
			Error:         errMsg,
			NodesExecuted: len(result.Order),
		})
	}

	return result, nil
}

// SubscribeTriggers wires the live executor to the event bus: every
// NodeTriggered event re-enters execution. Handlers are delivered
// serialized by the bus, preserving the single-threaded execution model.
func (e *LiveExecutor) SubscribeTriggers(bus eventbus.EventSubscriber) error {
	return bus.Handle(events.NodeTriggeredEvent, func(ctx context.Context, event interface{}) error {
		triggered, ok := event.(*events.NodeTriggered)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", event)
		}

		_, err := e.Trigger(ctx, triggered.NodeID)

		return err
	})
}

// execDownstream collects the triggering node and everything reachable
// from it over execution edges. Reroutes fed by a collected node are
// carried along so pass-through values refresh.
func (e *LiveExecutor) execDownstream(start *models.Node) map[string]bool {
	affected := map[string]bool{start.ID: true}
	queue := []*models.Node{start}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		execOut := node.ExecOutput()
		if execOut != nil {
			for _, c := range execOut.Connections {
				if c.StartPin != execOut || !c.IsExecution() {
					continue
				}

				succ, ok := e.graph.NodeByID(c.EndPin.NodeID)
				if ok && !affected[succ.ID] {
					affected[succ.ID] = true
					queue = append(queue, succ)
				}
			}
		}

		for _, pin := range node.DataOutputs() {
			for _, c := range pin.Connections {
				if c.StartPin != pin || !c.IsData() {
					continue
				}

				succ, ok := e.graph.NodeByID(c.EndPin.NodeID)
				if ok && succ.Kind == models.NodeKindReroute && !affected[succ.ID] {
					affected[succ.ID] = true
					queue = append(queue, succ)
				}
			}
		}
	}

	return affected
}

// resolveDataInputs makes sure every connected data input of the node has
// a produced value: producers outside the affected set that never ran are
// executed dependency-first, memoized through the object store.
func (e *LiveExecutor) resolveDataInputs(ctx context.Context, node *models.Node, affected, visiting map[string]bool) error {
	if visiting[node.ID] {
		return fmt.Errorf("data dependency cycle at node %s", node.ID)
	}

	visiting[node.ID] = true
	defer delete(visiting, node.ID)

	for _, pin := range node.DataInputs() {
		for _, c := range pin.Connections {
			if c.EndPin != pin || !c.IsData() {
				continue
			}

			if _, ok := e.store.Get(c.StartPin.ID); ok {
				continue
			}

			// Producers inside the affected set run in their own turn.
			if affected[c.StartPin.NodeID] {
				continue
			}

			producer, ok := e.graph.NodeByID(c.StartPin.NodeID)
			if !ok {
				return fmt.Errorf("producer %s not found", c.StartPin.NodeID)
			}

			if err := e.resolveDataInputs(ctx, producer, affected, visiting); err != nil {
				return err
			}

			if err := e.runNode(ctx, producer); err != nil {
				return fmt.Errorf("resolving input %s: %w", pin.Name, err)
			}
		}
	}

	return nil
}
