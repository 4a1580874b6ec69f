package temporalx

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClampBackoff(t *testing.T) {
	cases := []struct {
		base, max time.Duration
		attempt   int
		want      time.Duration
	}{
		{250 * time.Millisecond, 5 * time.Second, 1, 250 * time.Millisecond},
		{250 * time.Millisecond, 5 * time.Second, 3, time.Second},
		{250 * time.Millisecond, 5 * time.Second, 10, 5 * time.Second},
		{0, 0, 2, 500 * time.Millisecond},
	}
	for _, tc := range cases {
		if got := clampBackoff(tc.base, tc.max, tc.attempt); got != tc.want {
			t.Fatalf("clampBackoff(%v,%v,%d)=%v want %v", tc.base, tc.max, tc.attempt, got, tc.want)
		}
	}
}

func TestIsRetryableRPC(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unavailable", status.Error(codes.Unavailable, "down"), true},
		{"resource exhausted", status.Error(codes.ResourceExhausted, "slow down"), true},
		{"permission denied", status.Error(codes.PermissionDenied, "no"), false},
		{"deadline", context.DeadlineExceeded, true},
		{"plain", errors.New("x"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isRetryableRPC(tc.err); got != tc.want {
				t.Fatalf("isRetryableRPC=%v want %v", got, tc.want)
			}
		})
	}
}

func TestNewClientDisabledWithoutAddress(t *testing.T) {
	c, err := NewClient(context.Background(), nil, Config{})
	if err != nil || c != nil {
		t.Fatalf("client=%v err=%v", c, err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("TEMPORAL_ADDRESS", "")
	t.Setenv("TEMPORAL_NAMESPACE", "")
	t.Setenv("TRENDING_CRON", "")
	cfg := LoadConfig()
	if cfg.Enabled() || cfg.Namespace != "shelfmind" || cfg.TaskQueue != "shelfmind" || cfg.TrendingCron != "0 3 * * *" {
		t.Fatalf("cfg=%+v", cfg)
	}
}
