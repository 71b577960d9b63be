package mailbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendReceive(t *testing.T) {
	q := New[int]()

	require.NoError(t, q.Send(1))
	assert.Equal(t, 1, q.Len())

	v, err := q.Receive()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 0, q.Len())
}

func TestFIFOOrder(t *testing.T) {
	q := New[string]()

	for _, s := range []string{"a", "b", "c", "d"} {
		require.NoError(t, q.Send(s))
	}

	got := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		v, err := q.Receive()
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
}

func TestReceiveBlocksUntilSend(t *testing.T) {
	q := New[int]()
	const delay = 100 * time.Millisecond

	start := time.Now()
	go func() {
		time.Sleep(delay)
		_ = q.Send(7)
	}()

	v, err := q.Receive()
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.GreaterOrEqual(t, elapsed, delay)
}

func TestNoLossNoDuplication(t *testing.T) {
	q := New[int]()
	const (
		producers   = 8
		consumers   = 8
		perProducer = 500
		total       = producers * perProducer
	)

	var (
		mu   sync.Mutex
		seen = make(map[int]int, total)
		wg   sync.WaitGroup
	)

	for c := 0; c < consumers; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				v, err := q.Receive()
				if errors.Is(err, ErrClosed) {
					return
				}
				mu.Lock()
				seen[v]++
				mu.Unlock()
			}
		}()
	}

	var pwg sync.WaitGroup
	for p := 0; p < producers; p++ {
		pwg.Add(1)
		go func(base int) {
			defer pwg.Done()
			for i := 0; i < perProducer; i++ {
				_ = q.Send(base*perProducer + i)
			}
		}(p)
	}
	pwg.Wait()

	// 关闭后消费者仍会取空剩余元素
	q.Close()
	wg.Wait()

	require.Len(t, seen, total)
	for v, n := range seen {
		assert.Equal(t, 1, n, "value %d received %d times", v, n)
	}
}

func TestCloseDrainsThenFails(t *testing.T) {
	q := New[int]()
	require.NoError(t, q.Send(1))
	require.NoError(t, q.Send(2))

	q.Close()
	q.Close()
	assert.True(t, q.Closed())

	assert.ErrorIs(t, q.Send(3), ErrClosed)

	v, err := q.Receive()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = q.Receive()
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	_, err = q.Receive()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCloseWakesReceivers(t *testing.T) {
	q := New[int]()

	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		go func() {
			_, err := q.Receive()
			errs <- err
		}()
	}

	time.Sleep(50 * time.Millisecond)
	q.Close()

	for i := 0; i < 3; i++ {
		select {
		case err := <-errs:
			assert.ErrorIs(t, err, ErrClosed)
		case <-time.After(time.Second):
			t.Fatal("receiver not woken by Close")
		}
	}
}

func TestReceiveContextCancel(t *testing.T) {
	q := New[int]()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := q.ReceiveContext(ctx)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("ReceiveContext did not return after cancel")
	}

	// 取消的接收方不会吞掉后续元素
	require.NoError(t, q.Send(5))
	v, ok := q.TryReceive()
	assert.True(t, ok)
	assert.Equal(t, 5, v)
}

func TestReceiveContextAlreadyDone(t *testing.T) {
	q := New[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.ReceiveContext(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReceiveContextPrefersBufferedValue(t *testing.T) {
	q := New[int]()
	require.NoError(t, q.Send(9))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, err := q.ReceiveContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}

func TestReceiveTimeout(t *testing.T) {
	q := New[int]()

	start := time.Now()
	_, err := q.ReceiveTimeout(50 * time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = q.Send(3)
	}()
	v, err := q.ReceiveTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestTryReceiveEmpty(t *testing.T) {
	q := New[int]()
	v, ok := q.TryReceive()
	assert.False(t, ok)
	assert.Zero(t, v)
}

func TestNilInterfaceValue(t *testing.T) {
	q := New[error]()
	require.NoError(t, q.Send(nil))

	v, err := q.Receive()
	require.NoError(t, err)
	assert.Nil(t, v)
}
