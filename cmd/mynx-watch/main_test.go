package main

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/clumsyjedi/mynx/internal/testutil"
)

func TestWatchPath(t *testing.T) {
	if got := watchPath("golang"); got != "/r/golang/new.json" {
		t.Errorf("watchPath = %q", got)
	}
}

func TestRootCmdFlagDefaults(t *testing.T) {
	cmd := newRootCmd()

	tests := []struct {
		flag string
		want string
	}{
		{"subreddit", "golang"},
		{"user-agent", "mynx-watch/1.0"},
		{"log-level", "info"},
		{"count", "0"},
		{"no-cache", "false"},
	}
	for _, tt := range tests {
		f := cmd.Flags().Lookup(tt.flag)
		if f == nil {
			t.Errorf("Flag %q not registered", tt.flag)
			continue
		}
		if f.DefValue != tt.want {
			t.Errorf("Flag %q default = %q, want %q", tt.flag, f.DefValue, tt.want)
		}
	}
}

func TestRunWatch_StopsAtItemBudget(t *testing.T) {
	mock := testutil.NewMockReddit()
	defer mock.Close()

	future := float64(time.Now().Add(time.Minute).Unix())
	mock.SetListingPages("/r/watchtest/new.json", map[string]string{
		"": testutil.ListingJSON(
			testutil.LinkJSON("b", "second", "watchtest", future+1),
			testutil.LinkJSON("a", "first", "watchtest", future),
		),
	})

	opts := &watchOptions{
		subreddit: "watchtest",
		baseURL:   mock.URL(),
		userAgent: "mynx-test/1.0",
		interval:  time.Millisecond,
		noCache:   true,
		count:     2,
		logLevel:  "error",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := runWatch(ctx, opts); err != nil {
		t.Fatalf("runWatch failed: %v", err)
	}
}

func TestRunWatch_ReturnsCleanlyOnCancel(t *testing.T) {
	mock := testutil.NewMockReddit()
	defer mock.Close()

	opts := &watchOptions{
		subreddit: "quiet",
		baseURL:   mock.URL(),
		userAgent: "mynx-test/1.0",
		interval:  time.Millisecond,
		noCache:   true,
		logLevel:  "error",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := runWatch(ctx, opts); err != nil {
		t.Errorf("Cancelled watch should return nil, got %v", err)
	}
}

func TestRunWatch_RejectsBadRedis(t *testing.T) {
	opts := &watchOptions{
		subreddit: "golang",
		userAgent: "mynx-test/1.0",
		redisAddr: fmt.Sprintf("127.0.0.1:%d", 1),
		logLevel:  "error",
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := runWatch(ctx, opts); err == nil {
		t.Error("Expected error for unreachable redis")
	}
}
