package connect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrSnakeDoc/coursemark/internal/logger"
)

func fastOptions() RetryOptions {
	return RetryOptions{
		ConnectTimeout: 500 * time.Millisecond,
		RetryInterval:  5 * time.Millisecond,
		MaxWait:        20 * time.Millisecond,
		PingTimeout:    50 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestWithRetrySucceedsAfterFailures(t *testing.T) {
	log := logger.New("error", false)
	calls := 0
	ping := func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}

	if err := WithRetry(context.Background(), "test", "localhost:0", ping, fastOptions(), log); err != nil {
		t.Fatalf("WithRetry() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("ping called %d times, want 3", calls)
	}
}

func TestWithRetryTimesOut(t *testing.T) {
	log := logger.New("error", false)
	errDown := errors.New("down")
	opts := fastOptions()
	opts.ConnectTimeout = 60 * time.Millisecond

	err := WithRetry(context.Background(), "test", "localhost:0", func(context.Context) error { return errDown }, opts, log)
	if !errors.Is(err, errDown) {
		t.Errorf("WithRetry() error = %v, want wrapped %v", err, errDown)
	}
}

func TestRetryOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RetryOptions)
	}{
		{name: "zero connect timeout", mutate: func(o *RetryOptions) { o.ConnectTimeout = 0 }},
		{name: "zero retry interval", mutate: func(o *RetryOptions) { o.RetryInterval = 0 }},
		{name: "zero max wait", mutate: func(o *RetryOptions) { o.MaxWait = 0 }},
		{name: "zero ping timeout", mutate: func(o *RetryOptions) { o.PingTimeout = 0 }},
		{name: "negative warn threshold", mutate: func(o *RetryOptions) { o.WarnThreshold = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := fastOptions()
			tt.mutate(&opts)
			if err := opts.Validate(); err == nil {
				t.Error("Validate() should return error")
			}
		})
	}

	if err := fastOptions().Validate(); err != nil {
		t.Errorf("Validate() on valid options error = %v", err)
	}
}
