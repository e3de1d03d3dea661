package eventbus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := New[string]()
	ch := bus.Subscribe(1)
	bus.Publish("hello")
	assert.Equal(t, "hello", <-ch)
	bus.Unsubscribe(ch)
	_, ok := <-ch
	assert.False(t, ok)
}

func TestBusFanOut(t *testing.T) {
	bus := New[int]()
	a := bus.Subscribe(4)
	b := bus.Subscribe(4)
	for i := 0; i < 3; i++ {
		bus.Publish(i)
	}
	bus.Close()
	var got []int
	for v := range a {
		got = append(got, v)
	}
	assert.Equal(t, []int{0, 1, 2}, got)
	got = got[:0]
	for v := range b {
		got = append(got, v)
	}
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := New[int]()
	ch := bus.Subscribe(1)
	bus.Publish(1)
	bus.Publish(2)
	assert.Equal(t, int64(1), bus.Dropped())
	assert.Equal(t, 1, <-ch)
}

func TestBusConcurrentPublish(t *testing.T) {
	bus := New[int]()
	ch := bus.Subscribe(100)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bus.Publish(i)
		}(i)
	}
	wg.Wait()
	bus.Close()
	n := 0
	for range ch {
		n++
	}
	assert.Equal(t, 100, n)
	assert.Zero(t, bus.Dropped())
}

func TestBusSubscribeAfterClose(t *testing.T) {
	bus := New[float64]()
	bus.Close()
	ch := bus.Subscribe(1)
	_, ok := <-ch
	require.False(t, ok)
	bus.Publish(1)
	require.NotPanics(t, func() { bus.Unsubscribe(ch) })
	require.NotPanics(t, bus.Close)
}
