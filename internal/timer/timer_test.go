package timer_test

import (
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/garnizeh/rozgar/internal/timer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestManual_EveryFiresPerPeriod(t *testing.T) {
	clk := timer.NewManual()
	n := 0
	task := clk.Every(time.Second, func() { n++ })

	clk.Advance(500 * time.Millisecond)
	if n != 0 {
		t.Fatalf("fired early: %d", n)
	}
	clk.Advance(2500 * time.Millisecond)
	if n != 3 {
		t.Fatalf("expected 3 ticks after 3s, got %d", n)
	}
	task.Cancel()
	clk.Advance(5 * time.Second)
	if n != 3 {
		t.Fatalf("ticks after cancel: %d", n)
	}
	if clk.Pending() != 0 {
		t.Fatalf("cancelled task still pending")
	}
	select {
	case <-task.Done():
	default:
		t.Fatalf("manual task Done not closed on cancel")
	}
}

func TestManual_CallbackCancelsItself(t *testing.T) {
	clk := timer.NewManual()
	n := 0
	var task *timer.Task
	task = clk.Every(time.Second, func() {
		n++
		if n == 2 {
			task.Cancel()
		}
	})
	clk.Advance(10 * time.Second)
	if n != 2 {
		t.Fatalf("expected stop after 2 ticks, got %d", n)
	}
	task.Cancel()
}

func TestManual_AfterFiresOnce(t *testing.T) {
	clk := timer.NewManual()
	n := 0
	task := clk.After(5*time.Second, func() { n++ })
	clk.Advance(4 * time.Second)
	if n != 0 || task.Stopped() {
		t.Fatalf("fired early")
	}
	clk.Advance(time.Second)
	clk.Advance(time.Minute)
	if n != 1 {
		t.Fatalf("expected one call, got %d", n)
	}
	if !task.Stopped() || clk.Pending() != 0 {
		t.Fatalf("one-shot task still live")
	}
}

func TestManual_DueOrder(t *testing.T) {
	clk := timer.NewManual()
	var order []string
	clk.After(2*time.Second, func() { order = append(order, "b") })
	clk.After(time.Second, func() { order = append(order, "a") })
	clk.After(2*time.Second, func() { order = append(order, "c") })
	clk.Advance(3 * time.Second)
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestManual_ScheduleFromCallback(t *testing.T) {
	clk := timer.NewManual()
	n := 0
	clk.After(time.Second, func() {
		clk.After(time.Second, func() { n++ })
	})
	clk.Advance(2 * time.Second)
	if n != 1 {
		t.Fatalf("nested task did not fire within the same advance, n=%d", n)
	}
}

func TestReal_EveryAndCancel(t *testing.T) {
	var n atomic.Int32
	task := timer.Real{}.Every(5*time.Millisecond, func() { n.Add(1) })
	deadline := time.Now().Add(2 * time.Second)
	for n.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("ticker did not fire")
		}
		time.Sleep(time.Millisecond)
	}
	task.Cancel()
	task.Cancel()
	task.Wait()
	seen := n.Load()
	time.Sleep(20 * time.Millisecond)
	if n.Load() != seen {
		t.Fatalf("ticks after cancel")
	}
}

func TestReal_AfterCancelledBeforeFire(t *testing.T) {
	var fired atomic.Bool
	task := timer.Real{}.After(time.Hour, func() { fired.Store(true) })
	task.Cancel()
	task.Wait()
	if fired.Load() {
		t.Fatalf("cancelled one-shot fired")
	}
}

func TestReal_AfterFires(t *testing.T) {
	ch := make(chan struct{})
	task := timer.Real{}.After(time.Millisecond, func() { close(ch) })
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("one-shot did not fire")
	}
	task.Wait()
	if !task.Stopped() {
		t.Fatalf("fired one-shot should report stopped")
	}
}

func TestNilTask(t *testing.T) {
	var task *timer.Task
	task.Cancel()
	task.Wait()
	if !task.Stopped() {
		t.Fatalf("nil task should read as stopped")
	}
}
