// Package executor runs node graphs: a batch executor that performs one
// dependency-ordered pass over the whole graph, and a live executor that
// re-enters execution from a triggered node.
package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/wireflow/wireflow/pkg/codehost"
	"github.com/wireflow/wireflow/pkg/config"
	"github.com/wireflow/wireflow/pkg/eventbus"
	"github.com/wireflow/wireflow/pkg/events"
	"github.com/wireflow/wireflow/pkg/graph"
	"github.com/wireflow/wireflow/pkg/models"
)

// NodeStatus is the per-node outcome of a run.
type NodeStatus string

const (
	// StatusPending marks a node no execution edge fired for.
	StatusPending NodeStatus = "pending"
	StatusSuccess NodeStatus = "success"
	StatusError   NodeStatus = "error"
	// StatusSkipped marks a node whose required input comes from a failed
	// or skipped producer; an upstream failure, not the node's own fault.
	StatusSkipped NodeStatus = "skipped"
)

// NodeOutcome records how one node fared in a run.
type NodeOutcome struct {
	NodeID     string     `json:"node_id"`
	Status     NodeStatus `json:"status"`
	Error      string     `json:"error,omitempty"`
	DurationMs int64      `json:"duration_ms"`
}

// Result is the outcome of one run: the textual execution log, the
// per-node outcomes, the order nodes executed in, and the overall success
// flag. A run always completes and reports, even when individual nodes
// fail.
type Result struct {
	ExecutionID string                 `json:"execution_id"`
	Success     bool                   `json:"success"`
	Order       []string               `json:"order"`
	Outcomes    map[string]NodeOutcome `json:"outcomes"`
	Log         []string               `json:"log"`
}

func (r *Result) logf(format string, args ...any) {
	r.Log = append(r.Log, fmt.Sprintf(format, args...))
}

type compiled struct {
	code string
	fn   codehost.Callable
}

// Executor performs batch passes over a graph. All execution is
// synchronous on the caller's goroutine; a long-running user function
// blocks the run, and cancellation takes effect between node invocations
// only.
type Executor struct {
	graph     *graph.Graph
	host      codehost.Host
	cfg       config.Config
	publisher eventbus.EventPublisher

	store     *ObjectStore
	callables map[string]compiled
	logger    *log.Entry
}

// NewExecutor creates an executor for the graph. The publisher may be nil
// when no one listens for lifecycle events.
func NewExecutor(g *graph.Graph, host codehost.Host, cfg config.Config, publisher eventbus.EventPublisher) *Executor {
	return &Executor{
		graph:     g,
		host:      host,
		cfg:       cfg,
		publisher: publisher,
		store:     NewObjectStore(),
		callables: make(map[string]compiled),
		logger: log.WithFields(log.Fields{
			"module":   "executor",
			"graph_id": g.ID,
		}),
	}
}

// Store exposes the object store; the live executor keeps it warm between
// triggers.
func (e *Executor) Store() *ObjectStore {
	return e.store
}

// Run executes one batch pass: nodes ordered by their data dependencies,
// fired according to their execution edges. A data-dependency cycle aborts
// the run before any node executes.
func (e *Executor) Run(ctx context.Context) (*Result, error) {
	executionID := generateExecutionID()
	logger := e.logger.WithFields(log.Fields{"execution_id": executionID})
	started := time.Now()

	order, err := e.dataOrder()
	if err != nil {
		logger.Errorf("Cannot order graph: %v", err)

		return nil, err
	}

	e.store.Reset()

	result := &Result{
		ExecutionID: executionID,
		Order:       make([]string, 0, len(order)),
		Outcomes:    make(map[string]NodeOutcome, len(order)),
		Log:         make([]string, 0),
	}

	for _, node := range order {
		result.Outcomes[node.ID] = NodeOutcome{NodeID: node.ID, Status: StatusPending}
	}

	logger.Info("Starting batch execution")
	e.publish(ctx, events.ExecutionStarted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionStartedEvent, e.graph.ID),
		ExecutionID: executionID,
		GraphName:   e.graph.Name,
	})

	fired := make(map[string]bool, len(order))

	var cancelled error

	for _, node := range order {
		if err := ctx.Err(); err != nil {
			cancelled = err
			result.logf("run cancelled: %v", err)

			break
		}

		if !e.shouldFire(node, fired) {
			continue
		}

		if blocker := e.upstreamFailure(node, result); blocker != "" {
			result.Outcomes[node.ID] = NodeOutcome{NodeID: node.ID, Status: StatusSkipped, Error: "upstream failure: " + blocker}
			result.logf("node %s (%s) skipped: upstream failure in %s", node.ID, node.Title, blocker)
			logger.WithFields(log.Fields{"node_id": node.ID}).Warn("Skipping node after upstream failure")

			continue
		}

		nodeStarted := time.Now()
		err := e.runNode(ctx, node)
		duration := time.Since(nodeStarted).Milliseconds()

		if err != nil {
			result.Outcomes[node.ID] = NodeOutcome{NodeID: node.ID, Status: StatusError, Error: err.Error(), DurationMs: duration}
			result.logf("node %s (%s) failed: %v", node.ID, node.Title, err)
			logger.WithFields(log.Fields{"node_id": node.ID}).Errorf("Node failed: %v", err)
			e.publish(ctx, events.NodeExecutionFailed{
				BaseEvent:   events.NewBaseEvent(events.NodeExecutionFailedEvent, e.graph.ID),
				ExecutionID: executionID,
				NodeID:      node.ID,
				Error:       err.Error(),
			})

			if e.cfg.StopOnError {
				result.logf("stopping run after first error")

				break
			}

			continue
		}

		fired[node.ID] = true
		result.Order = append(result.Order, node.ID)
		result.Outcomes[node.ID] = NodeOutcome{NodeID: node.ID, Status: StatusSuccess, DurationMs: duration}
		result.logf("node %s (%s) executed", node.ID, node.Title)
		e.publish(ctx, events.NodeExecutionFinished{
			BaseEvent:   events.NewBaseEvent(events.NodeExecutionFinishedEvent, e.graph.ID),
			ExecutionID: executionID,
			NodeID:      node.ID,
			DurationMs:  duration,
		})
	}

	executed, skipped, failed := 0, 0, 0

	for _, outcome := range result.Outcomes {
		switch outcome.Status {
		case StatusSuccess:
			executed++
		case StatusSkipped:
			skipped++
		case StatusError:
			failed++
		}
	}

	// A run cut short by cancellation is not a successful one, even though
	// none of the reached nodes failed.
	result.Success = failed == 0 && skipped == 0 && cancelled == nil
	result.logf("run finished: %d executed, %d skipped, %d failed", executed, skipped, failed)

	if e.cfg.DumpObjectStore {
		for pinID, value := range e.store.Snapshot() {
			logger.Debugf("store %s = %v", pinID, value)
		}
	}

	durationMs := time.Since(started).Milliseconds()

	if result.Success {
		e.publish(ctx, events.ExecutionCompleted{
			BaseEvent:     events.NewBaseEvent(events.ExecutionCompletedEvent, e.graph.ID),
			ExecutionID:   executionID,
			DurationMs:    durationMs,
			NodesExecuted: executed,
			NodesSkipped:  skipped,
		})
		logger.Info("Batch execution completed")
	} else {
		errMsg := fmt.Sprintf("%d node(s) failed, %d skipped", failed, skipped)
		if cancelled != nil {
			errMsg = fmt.Sprintf("run cancelled: %v", cancelled)
		}

		e.publish(ctx, events.ExecutionFailed{
			BaseEvent:     events.NewBaseEvent(events.ExecutionFailedEvent, e.graph.ID),
			ExecutionID:   executionID,
			DurationMs:    durationMs,
			Error:         errMsg,
			NodesExecuted: executed,
		})
		logger.Warn("Batch execution finished with failures")
	}

	return result, nil
}

// runNode gathers the node's inputs from the object store, invokes the
// entry function, and routes the outputs to the store. Reroute nodes pass
// their input through unchanged.
func (e *Executor) runNode(ctx context.Context, node *models.Node) error {
	if node.Kind == models.NodeKindReroute {
		value := e.inputValue(node.FindPin(models.PinNameRerouteIn))
		out := node.FindPin(models.PinNameRerouteOut)
		out.Value = value
		e.store.Set(out.ID, value)

		return nil
	}

	callable, err := e.compile(node)
	if err != nil {
		return err
	}

	inputs := make(map[string]any)

	for _, pin := range node.DataInputs() {
		value := e.inputValue(pin)
		pin.Value = value
		inputs[pin.Name] = value
	}

	if e.cfg.TraceExecution {
		e.logger.WithFields(log.Fields{"node_id": node.ID, "inputs": inputs}).Debug("Invoking node")
	}

	outputs, err := e.host.Invoke(ctx, callable, inputs)
	if err != nil {
		return fmt.Errorf("invoking %q: %w", node.FunctionName, err)
	}

	for i, pin := range node.DataOutputs() {
		if i >= len(outputs) {
			break
		}

		pin.Value = outputs[i]
		e.store.Set(pin.ID, outputs[i])
	}

	return nil
}

// inputValue resolves a data input pin: the producing pin's stored value
// when connected, the pin's own literal value otherwise.
func (e *Executor) inputValue(pin *models.Pin) any {
	for _, c := range pin.Connections {
		if c.EndPin != pin || !c.IsData() {
			continue
		}

		if value, ok := e.store.Get(c.StartPin.ID); ok {
			return value
		}
	}

	return pin.Value
}

func (e *Executor) compile(node *models.Node) (codehost.Callable, error) {
	if node.FunctionName == "" {
		return nil, fmt.Errorf("node %s has no entry function", node.ID)
	}

	if cached, ok := e.callables[node.ID]; ok && cached.code == node.Code {
		return cached.fn, nil
	}

	fn, err := e.host.Compile(node.Code)
	if err != nil {
		return nil, err
	}

	e.callables[node.ID] = compiled{code: node.Code, fn: fn}

	return fn, nil
}

// shouldFire applies the control-flow rules: a node fires if it is a
// source (no inbound execution connections), or if at least one inbound
// execution edge comes from a node that already fired. Reroutes carry no
// execution pins and fire with their producer.
func (e *Executor) shouldFire(node *models.Node, fired map[string]bool) bool {
	if node.Kind == models.NodeKindReroute {
		in := node.FindPin(models.PinNameRerouteIn)

		connected := false

		for _, c := range in.Connections {
			if c.EndPin == in && c.IsData() {
				connected = true

				if fired[c.StartPin.NodeID] {
					return true
				}
			}
		}

		return !connected
	}

	execIn := node.ExecInput()
	if execIn == nil {
		return true
	}

	inbound := false

	for _, c := range execIn.Connections {
		if c.EndPin != execIn || !c.IsExecution() {
			continue
		}

		inbound = true

		if fired[c.StartPin.NodeID] {
			return true
		}
	}

	return !inbound
}

// isSource reports whether a node fires without any execution edge: a
// standard node with no inbound execution connections, or a reroute whose
// input is unconnected.
func (e *Executor) isSource(node *models.Node) bool {
	if node.Kind == models.NodeKindReroute {
		in := node.FindPin(models.PinNameRerouteIn)

		for _, c := range in.Connections {
			if c.EndPin == in && c.IsData() {
				return false
			}
		}

		return true
	}

	execIn := node.ExecInput()
	if execIn == nil {
		return true
	}

	for _, c := range execIn.Connections {
		if c.EndPin == execIn && c.IsExecution() {
			return false
		}
	}

	return true
}

// upstreamFailure returns the ID of a failed or skipped producer feeding
// one of the node's data inputs, or "".
func (e *Executor) upstreamFailure(node *models.Node, result *Result) string {
	for _, pin := range node.DataInputs() {
		for _, c := range pin.Connections {
			if c.EndPin != pin || !c.IsData() {
				continue
			}

			outcome, ok := result.Outcomes[c.StartPin.NodeID]
			if ok && (outcome.Status == StatusError || outcome.Status == StatusSkipped) {
				return c.StartPin.NodeID
			}
		}
	}

	return ""
}

// dataOrder computes a topological order over the data edges. Ties are
// broken by graph insertion order so repeated runs on an unchanged graph
// execute in an identical order. A cycle is an error; nothing executes.
func (e *Executor) dataOrder() ([]*models.Node, error) {
	nodes := e.graph.Nodes()

	position := make(map[string]int, len(nodes))
	for i, n := range nodes {
		position[n.ID] = i
	}

	indegree := make(map[string]int, len(nodes))
	successors := make(map[string][]string, len(nodes))

	for _, c := range e.graph.Connections() {
		if !c.IsData() {
			continue
		}

		from, to := c.StartPin.NodeID, c.EndPin.NodeID
		successors[from] = append(successors[from], to)
		indegree[to]++
	}

	ready := make([]*models.Node, 0, len(nodes))

	for _, n := range nodes {
		if indegree[n.ID] == 0 {
			ready = append(ready, n)
		}
	}

	order := make([]*models.Node, 0, len(nodes))

	for len(ready) > 0 {
		// Lowest insertion index first.
		best := 0

		for i := 1; i < len(ready); i++ {
			if position[ready[i].ID] < position[ready[best].ID] {
				best = i
			}
		}

		node := ready[best]
		ready = append(ready[:best], ready[best+1:]...)
		order = append(order, node)

		for _, succID := range successors[node.ID] {
			indegree[succID]--
			if indegree[succID] == 0 {
				succ, _ := e.graph.NodeByID(succID)
				ready = append(ready, succ)
			}
		}
	}

	if len(order) != len(nodes) {
		remaining := make([]string, 0)

		for _, n := range nodes {
			if indegree[n.ID] > 0 {
				remaining = append(remaining, n.ID)
			}
		}

		return nil, fmt.Errorf("data dependency cycle involving nodes: %s", strings.Join(remaining, ", "))
	}

	return order, nil
}

func (e *Executor) publish(ctx context.Context, event eventbus.Event) {
	if e.publisher == nil {
		return
	}

	if err := e.publisher.Publish(ctx, e.graph.ID, event); err != nil {
		e.logger.Warnf("Failed to publish %s: %v", event.GetType(), err)
	}
}

// generateExecutionID generates a unique execution ID.
func generateExecutionID() string {
	return fmt.Sprintf("exec-%s", uuid.New().String()[:8])
}
