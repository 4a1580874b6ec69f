package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
)

// Runs only against a live server: REDIS_TEST_ADDR=localhost:6379 go test ./internal/clients/redis
func TestJSONCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	c, err := NewJSONCache(logger.Nop(), addr, "shelfmind_test")
	if err != nil {
		t.Fatalf("NewJSONCache: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	key := "k:" + uuid.NewString()

	var got struct{ Title string }
	ok, err := c.Get(ctx, key, &got)
	if err != nil || ok {
		t.Fatalf("Get on missing key ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, key, struct{ Title string }{"파친코"}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	ok, err = c.Get(ctx, key, &got)
	if err != nil || !ok || got.Title != "파친코" {
		t.Fatalf("Get ok=%v err=%v got=%+v", ok, err, got)
	}
}

func TestNewJSONCacheRequiresAddr(t *testing.T) {
	if _, err := NewJSONCache(logger.Nop(), " ", ""); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}
