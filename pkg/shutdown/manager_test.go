package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestManager_ShutdownOrderAndErrors(t *testing.T) {
	m := NewManager(zap.NewNop(), time.Second)

	var order []string
	m.RegisterNoErr("keys", func() { order = append(order, "keys") })
	m.Register("metrics", func(context.Context) error {
		order = append(order, "metrics")
		return errors.New("already closed")
	})
	m.RegisterNoErr("http", func() { order = append(order, "http") })

	errs := m.Shutdown()

	assert.Equal(t, []string{"http", "metrics", "keys"}, order)
	assert.Len(t, errs, 1)
	assert.EqualError(t, errs["metrics"], "already closed")
}

func TestManager_ShutdownContextHasDeadline(t *testing.T) {
	m := NewManager(zap.NewNop(), time.Second)

	var hasDeadline bool
	m.Register("server", func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	})
	m.Shutdown()
	assert.True(t, hasDeadline)
}

func TestManager_WaitForShutdownOnContext(t *testing.T) {
	m := NewManager(zap.NewNop(), time.Second)
	called := false
	m.RegisterNoErr("server", func() { called = true })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	errs := m.WaitForShutdown(ctx)

	assert.Empty(t, errs)
	assert.True(t, called)
}
