package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestManager_RunsHooksInReverseOrder(t *testing.T) {
	m := New(time.Second, zap.NewNop())

	var order []string
	for _, name := range []string{"store", "grpc", "health"} {
		m.Add(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.Wait(ctx)

	require.Equal(t, []string{"health", "grpc", "store"}, order)
}

func TestManager_FailingHookDoesNotStopOthers(t *testing.T) {
	m := New(time.Second, zap.NewNop())

	ran := false
	m.Add("first", func(context.Context) error {
		ran = true
		return nil
	})
	m.Add("broken", func(context.Context) error {
		return errors.New("boom")
	})

	m.Run()
	require.True(t, ran)
}

type slowServer struct {
	stopped chan struct{}
}

func (s *slowServer) GracefulStop() { <-s.stopped }
func (s *slowServer) Stop()         { close(s.stopped) }

func TestShutdownGRPCServer_ForcesStopOnTimeout(t *testing.T) {
	srv := &slowServer{stopped: make(chan struct{})}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := ShutdownGRPCServer(srv)(ctx)
	require.Error(t, err)

	select {
	case <-srv.stopped:
	default:
		t.Fatal("expected forced stop")
	}
}
