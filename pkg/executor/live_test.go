package executor

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wireflow/wireflow/pkg/channels/gochannel"
	"github.com/wireflow/wireflow/pkg/codehost"
	"github.com/wireflow/wireflow/pkg/config"
	"github.com/wireflow/wireflow/pkg/eventbus"
	"github.com/wireflow/wireflow/pkg/events"
	"github.com/wireflow/wireflow/pkg/graph"
	"github.com/wireflow/wireflow/pkg/models"
)

// counterGraph builds a live-mode fixture: a counting source node wired by
// an execution edge to a consumer, plus an unrelated source that must stay
// untouched by triggers.
func counterGraph(t *testing.T) (*graph.Graph, *codehost.FuncHost, *models.Node, *models.Node, *models.Node, *int, *[]any) {
	t.Helper()

	g := graph.New("live")
	host := codehost.NewFuncHost(slog.Default())

	count := 0
	received := make([]any, 0)

	host.Register("count", func(_ context.Context, _ map[string]any) ([]any, error) {
		count++

		return []any{count}, nil
	})
	host.Register("consume", func(_ context.Context, inputs map[string]any) ([]any, error) {
		received = append(received, inputs["value"])

		return nil, nil
	})
	host.Register("produce", func(_ context.Context, _ map[string]any) ([]any, error) {
		return []any{0}, nil
	})

	counter, err := g.CreateNode("Count", "def count() -> int:\n    return 0\n")
	require.NoError(t, err)
	consumer, err := g.CreateNode("Consume", consumeCode)
	require.NoError(t, err)
	unrelated, err := g.CreateNode("Unrelated", produceCode)
	require.NoError(t, err)

	connect(t, g, counter, "output", consumer, "value")
	connect(t, g, counter, models.PinNameExecOut, consumer, models.PinNameExecIn)

	return g, host, counter, consumer, unrelated, &count, &received
}

func TestTriggerIgnoredWhenNotLive(t *testing.T) {
	g, host, counter, _, _, count, _ := counterGraph(t)

	live := NewLiveExecutor(NewExecutor(g, host, config.Default(), nil))

	result, err := live.Trigger(context.Background(), counter.ID)
	require.NoError(t, err)
	assert.Nil(t, result, "triggers before StartLive are dropped")
	assert.Zero(t, *count)
}

func TestTriggerRunsDownstreamOnly(t *testing.T) {
	g, host, counter, consumer, unrelated, count, received := counterGraph(t)

	live := NewLiveExecutor(NewExecutor(g, host, config.Default(), nil))
	live.StartLive()

	result, err := live.Trigger(context.Background(), counter.ID)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Success)
	assert.Equal(t, []string{counter.ID, consumer.ID}, result.Order)
	assert.Equal(t, 1, *count)
	assert.Equal(t, []any{1}, *received)

	_, touched := result.Outcomes[unrelated.ID]
	assert.False(t, touched, "nodes outside the downstream set are not part of the trigger")

	// A second trigger re-executes the same subset with fresh values.
	result, err = live.Trigger(context.Background(), counter.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []any{1, 2}, *received)
}

func TestTriggerCancelledContext(t *testing.T) {
	g, host, counter, _, _, count, _ := counterGraph(t)

	live := NewLiveExecutor(NewExecutor(g, host, config.Default(), nil))
	live.StartLive()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := live.Trigger(ctx, counter.ID)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Zero(t, *count)
	assert.False(t, result.Success, "a cut-short trigger must not report success")
}

func TestTriggerUnknownNode(t *testing.T) {
	g, host, _, _, _, _, _ := counterGraph(t)

	live := NewLiveExecutor(NewExecutor(g, host, config.Default(), nil))
	live.StartLive()

	_, err := live.Trigger(context.Background(), "ghost")
	assert.Error(t, err)
}

func TestPauseKeepsStateAndResumes(t *testing.T) {
	g, host, counter, _, _, count, received := counterGraph(t)

	exec := NewExecutor(g, host, config.Default(), nil)
	live := NewLiveExecutor(exec)
	live.StartLive()

	_, err := live.Trigger(context.Background(), counter.ID)
	require.NoError(t, err)
	require.Equal(t, 1, *count)

	live.SetLiveMode(false)
	require.False(t, live.Accepting())

	result, err := live.Trigger(context.Background(), counter.ID)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 1, *count, "a paused executor ignores triggers")

	// Produced state survives the pause.
	value, ok := exec.Store().Get(models.MakePinID(counter.ID, "output"))
	require.True(t, ok)
	assert.Equal(t, 1, value)

	live.SetLiveMode(true)
	require.True(t, live.Accepting())

	_, err = live.Trigger(context.Background(), counter.ID)
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2}, *received)
}

func TestRestartGraphRePrimesSources(t *testing.T) {
	g, host, counter, _, unrelated, count, _ := counterGraph(t)

	exec := NewExecutor(g, host, config.Default(), nil)
	live := NewLiveExecutor(exec)
	live.StartLive()

	_, err := exec.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, *count)

	require.NoError(t, live.RestartGraph(context.Background()))

	// Sources ran again; the consumer produced nothing new.
	assert.Equal(t, 2, *count)

	value, ok := exec.Store().Get(models.MakePinID(counter.ID, "output"))
	require.True(t, ok)
	assert.Equal(t, 2, value)

	_, ok = exec.Store().Get(models.MakePinID(unrelated.ID, "output"))
	assert.True(t, ok, "every source is re-primed")

	assert.Equal(t, 2, exec.Store().Len(), "only source outputs are warm after a restart")
}

func TestTriggerResolvesColdDependencies(t *testing.T) {
	g := graph.New("cold")
	host := codehost.NewFuncHost(slog.Default())

	invocations := map[string]int{}

	register := func(name string, outputs func(map[string]any) []any) {
		host.Register(name, func(_ context.Context, inputs map[string]any) ([]any, error) {
			invocations[name]++

			return outputs(inputs), nil
		})
	}

	register("seed", func(_ map[string]any) []any { return []any{10} })
	register("mid", func(inputs map[string]any) []any { return []any{inputs["value"].(int) + 1} })
	register("final", func(inputs map[string]any) []any { return []any{inputs["value"].(int) * 2} })

	seed, err := g.CreateNode("Seed", "def seed() -> int:\n    return 10\n")
	require.NoError(t, err)
	mid, err := g.CreateNode("Mid", "def mid(value: int) -> int:\n    return value + 1\n")
	require.NoError(t, err)
	final, err := g.CreateNode("Final", "def final(value: int) -> int:\n    return value * 2\n")
	require.NoError(t, err)

	connect(t, g, seed, "output", mid, "value")
	connect(t, g, mid, "output", final, "value")

	exec := NewExecutor(g, host, config.Default(), nil)
	live := NewLiveExecutor(exec)
	live.StartLive()

	// Nothing has run yet: triggering the last node must execute its cold
	// upstream producers dependency-first.
	result, err := live.Trigger(context.Background(), final.ID)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Success)
	assert.Equal(t, 1, invocations["seed"])
	assert.Equal(t, 1, invocations["mid"])
	assert.Equal(t, 1, invocations["final"])

	value, ok := exec.Store().Get(models.MakePinID(final.ID, "output"))
	require.True(t, ok)
	assert.Equal(t, 22, value)

	// A second trigger reuses the warm upstream values.
	_, err = live.Trigger(context.Background(), final.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, invocations["seed"])
	assert.Equal(t, 1, invocations["mid"])
	assert.Equal(t, 2, invocations["final"])
}

func TestTriggerCarriesDownstreamReroutes(t *testing.T) {
	g := graph.New("reroute-live")
	host := codehost.NewFuncHost(slog.Default())

	count := 0

	host.Register("count", func(_ context.Context, _ map[string]any) ([]any, error) {
		count++

		return []any{count}, nil
	})

	counter, err := g.CreateNode("Count", "def count() -> int:\n    return 0\n")
	require.NoError(t, err)
	reroute, err := g.CreateRerouteNode()
	require.NoError(t, err)

	connect(t, g, counter, "output", reroute, models.PinNameRerouteIn)

	exec := NewExecutor(g, host, config.Default(), nil)
	live := NewLiveExecutor(exec)
	live.StartLive()

	result, err := live.Trigger(context.Background(), counter.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{counter.ID, reroute.ID}, result.Order)

	value, ok := exec.Store().Get(models.MakePinID(reroute.ID, models.PinNameRerouteOut))
	require.True(t, ok)
	assert.Equal(t, 1, value, "the reroute pass-through value refreshed with its producer")
}

func TestSubscribeTriggers(t *testing.T) {
	g := graph.New("bus")
	host := codehost.NewFuncHost(slog.Default())

	var count atomic.Int32

	host.Register("count", func(_ context.Context, _ map[string]any) ([]any, error) {
		return []any{int(count.Add(1))}, nil
	})

	counter, err := g.CreateNode("Count", "def count() -> int:\n    return 0\n")
	require.NoError(t, err)

	live := NewLiveExecutor(NewExecutor(g, host, config.Default(), nil))
	live.StartLive()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	t.Cleanup(func() { _ = pub.Close() })

	bus := eventbus.NewWatermillEventBus(pub, sub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, live.SubscribeTriggers(bus))
	require.NoError(t, bus.Subscribe(ctx))

	event := events.NodeTriggered{
		BaseEvent: events.NewBaseEvent(events.NodeTriggeredEvent, g.ID),
		NodeID:    counter.ID,
	}
	require.NoError(t, bus.Publish(ctx, g.ID, event))

	assert.Eventually(t, func() bool {
		return count.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)
}
