package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pep299/american-standard/internal/service"
)

type recordingGenerator struct {
	mu     sync.Mutex
	forces []bool
	result service.Result
}

func (g *recordingGenerator) Generate(_ context.Context, force bool) service.Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.forces = append(g.forces, force)
	return g.result
}

func TestNewRejectsInvalidSchedule(t *testing.T) {
	_, err := New("every morning", &recordingGenerator{}, nil)
	assert.Error(t, err)
}

func TestRunGeneratesWithoutForce(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	gen := &recordingGenerator{result: service.Result{Success: true, Message: service.MsgGenerated, Date: "2025-06-01", ArticleCount: 8}}

	s, err := New("0 6 * * *", gen, zap.New(core))
	require.NoError(t, err)

	s.run()

	assert.Equal(t, []bool{false}, gen.forces)
	assert.Equal(t, 1, logs.FilterMessage("scheduled generation completed").Len())
}

func TestRunLogsFailure(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	gen := &recordingGenerator{result: service.Result{Error: service.MsgFallback, Details: "boom", FallbackDate: "2025-05-31", Stale: true}}

	s, err := New("0 6 * * *", gen, zap.New(core))
	require.NoError(t, err)

	s.run()

	entries := logs.FilterMessage("scheduled generation failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "2025-05-31", entries[0].ContextMap()["fallback_date"])
}

func TestStartStop(t *testing.T) {
	s, err := New("@every 1h", &recordingGenerator{}, nil)
	require.NoError(t, err)

	s.Start()
	assert.Len(t, s.cron.Entries(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.Error(t, s.ctx.Err())
}
