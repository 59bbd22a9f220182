package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newGroup(maxFailures int) *FallbackGroup[string] {
	fg := NewFallbackGroup("primary", "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: maxFailures, ResetTimeout: time.Hour},
	})
	fg.AddFallback("secondary", "secondary")
	return fg
}

func TestFallbackGroup_Execute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		failing map[string]bool
		want    string
		wantErr error
	}{
		{name: "primary success", want: "primary"},
		{name: "primary fails", failing: map[string]bool{"primary": true}, want: "secondary"},
		{name: "all fail", failing: map[string]bool{"primary": true, "secondary": true}, wantErr: ErrAllFailed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			fg := newGroup(3)
			var called string
			err := fg.Execute(func(v string) error {
				if tc.failing[v] {
					return errTest
				}
				called = v
				return nil
			})
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) || !errors.Is(err, errTest) {
					t.Fatalf("err = %v, want %v wrapping the last failure", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if called != tc.want {
				t.Fatalf("called = %q, want %q", called, tc.want)
			}
		})
	}
}

func TestFallbackGroup_SkipsOpenProvider(t *testing.T) {
	t.Parallel()

	fg := newGroup(2)
	primaryCalls := 0
	for range 3 {
		_ = fg.Execute(func(v string) error {
			if v == "primary" {
				primaryCalls++
				return errTest
			}
			return nil
		})
	}
	if primaryCalls != 2 {
		t.Errorf("primary called %d times, want 2 before its circuit opened", primaryCalls)
	}
	states := fg.States()
	if states["primary"] != StateOpen || states["secondary"] != StateClosed {
		t.Errorf("States() = %v", states)
	}
	if fg.Primary() != "primary" {
		t.Errorf("Primary() = %q", fg.Primary())
	}
}

func TestExecuteWithResult_ContextErrorStopsFailover(t *testing.T) {
	t.Parallel()

	fg := newGroup(3)
	var tried []string
	_, err := ExecuteWithResult(fg, func(v string) (int, error) {
		tried = append(tried, v)
		return 0, context.Canceled
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(tried) != 1 {
		t.Errorf("tried %v, want only the primary", tried)
	}
}

func TestExecuteWithResult_Failover(t *testing.T) {
	t.Parallel()

	fg := NewFallbackGroup(10, "ten", FallbackConfig{})
	fg.AddFallback("twenty", 20)

	result, err := ExecuteWithResult(fg, func(v int) (int, error) {
		if v == 10 {
			return 0, errTest
		}
		return v * 2, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 40 {
		t.Fatalf("result = %d, want 40", result)
	}
}
