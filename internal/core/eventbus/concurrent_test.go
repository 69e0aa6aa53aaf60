// Package eventbus 事件总线并发测试
package eventbus

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/homecentral/go-homecentral/pkg/types"
)

// TestBus_ManySubscribers 测试大量订阅者
//
// 验证:
//   - 数千订阅者下订阅/发布仍然正确
//   - 订阅计数与实际一致
func TestBus_ManySubscribers(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	const n = 2000

	var counter atomic.Int64
	unsubs := make([]func(), 0, n)
	for i := 0; i < n; i++ {
		unsub, err := bus.Subscribe(new(testEvent), "", func(_ context.Context, _ types.Event) error {
			counter.Add(1)
			return nil
		})
		if err != nil {
			t.Fatalf("Subscribe() #%d failed: %v", i, err)
		}
		unsubs = append(unsubs, unsub)
	}

	if got := bus.SubscriptionCount(new(testEvent)); got != n {
		t.Fatalf("expected %d subscriptions, got %d", n, got)
	}

	bus.Publish(ctx, newTestEvent(1))

	if got := counter.Load(); got != n {
		t.Errorf("expected %d invocations, got %d", n, got)
	}

	for _, unsub := range unsubs {
		unsub()
	}
	if got := bus.SubscriptionCount(new(testEvent)); got != 0 {
		t.Errorf("expected 0 subscriptions after unsubscribe, got %d", got)
	}
}

// TestBus_ConcurrentSubscribePublish 测试并发订阅与发布
//
// 验证: 订阅/退订与分发并发进行时不 panic、不丢失订阅集合一致性。
func TestBus_ConcurrentSubscribePublish(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	const (
		publishers  = 8
		subscribers = 8
		rounds      = 200
	)

	var wg sync.WaitGroup

	// 并发发布
	for p := 0; p < publishers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				bus.Publish(ctx, newTestEvent(i))
			}
		}()
	}

	// 并发订阅/退订
	for s := 0; s < subscribers; s++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				unsub, err := bus.Subscribe(new(testEvent), "", func(_ context.Context, _ types.Event) error {
					return nil
				})
				if err != nil {
					t.Errorf("Subscribe() failed: %v", err)
					return
				}
				unsub()
			}
		}()
	}

	wg.Wait()

	if got := bus.SubscriptionCount(new(testEvent)); got != 0 {
		t.Errorf("expected 0 subscriptions after churn, got %d", got)
	}
}

// TestBus_ConcurrentPublishIndependentTypes 测试并发发布独立事件类型
func TestBus_ConcurrentPublishIndependentTypes(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	var plain, keyed atomic.Int64

	_, err := bus.Subscribe(new(testEvent), "", func(_ context.Context, _ types.Event) error {
		plain.Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe(testEvent) failed: %v", err)
	}

	_, err = bus.Subscribe(new(keyedEvent), "", func(_ context.Context, _ types.Event) error {
		keyed.Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe(keyedEvent) failed: %v", err)
	}

	const rounds = 500
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			bus.Publish(ctx, newTestEvent(i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			bus.Publish(ctx, newKeyedEvent("k", i))
		}
	}()

	wg.Wait()

	if plain.Load() != rounds {
		t.Errorf("expected %d plain events, got %d", rounds, plain.Load())
	}
	if keyed.Load() != rounds {
		t.Errorf("expected %d keyed events, got %d", rounds, keyed.Load())
	}
}
