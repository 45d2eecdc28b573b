package cache

import (
	"testing"
	"time"
)

// An unreachable backend must degrade to misses, never panic or block the
// caller; the failures are logged inside the adapter.
func TestRedis_UnreachableBackendDegrades(t *testing.T) {
	// Reserved port, nothing listens there.
	c := NewRedis("127.0.0.1:1", 0, "test:")

	c.Set("k", []byte("v"), time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss from unreachable backend")
	}

	c.Delete("k")
}
