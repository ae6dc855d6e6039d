package redis

import (
	"testing"

	"github.com/farmlog-app/farmlog-backend/pkg/config"
)

func TestOptionsFromConfig_RequiresEndpoint(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when neither URL nor address set")
	}
}

func TestOptionsFromConfig_ParsesURL(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:pw@localhost:6380/2", PoolSize: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6380" {
		t.Fatalf("unexpected addr %q", opts.Addr)
	}
	if opts.DB != 2 {
		t.Fatalf("unexpected db %d", opts.DB)
	}
	if opts.PoolSize != 7 {
		t.Fatalf("expected pool size fallback 7, got %d", opts.PoolSize)
	}
}

func TestBuildKeyNamespacing(t *testing.T) {
	c := &Client{}
	if got := c.RateLimitKey("login"); got != "fl:rate_limit:login" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := c.RateLimitKey(" sign:ip "); got != "fl:rate_limit:sign:ip" {
		t.Fatalf("unexpected key %q", got)
	}
}
