package dedup

import (
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestDeduper(ttl time.Duration, max int) (*Deduper, *clock) {
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	d := New(ttl, max)
	d.now = c.now
	return d, c
}

func TestShouldProcess(t *testing.T) {
	d, c := newTestDeduper(time.Minute, 10)

	if !d.ShouldProcess("a") {
		t.Fatal("first delivery must be processed")
	}
	if d.ShouldProcess("a") {
		t.Error("redelivery within ttl must be dropped")
	}
	if !d.ShouldProcess("") || !d.ShouldProcess("") {
		t.Error("empty id is always processed")
	}

	c.t = c.t.Add(61 * time.Second)
	if !d.ShouldProcess("a") {
		t.Error("id must be processed again after the ttl")
	}
}

func TestEvictionKeepsBound(t *testing.T) {
	d, c := newTestDeduper(time.Hour, 3)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		d.ShouldProcess(id)
		c.t = c.t.Add(time.Second)
	}
	if n := d.Len(); n != 3 {
		t.Fatalf("Len = %d, want 3", n)
	}
	if d.ShouldProcess("e") {
		t.Error("most recent id was evicted")
	}
	if !d.ShouldProcess("a") {
		t.Error("oldest id should have been evicted")
	}
}

func TestShouldProcessPayload(t *testing.T) {
	d, _ := newTestDeduper(time.Minute, 10)
	if !d.ShouldProcessPayload([]byte(`{"action":"drip"}`)) {
		t.Fatal("first payload must pass")
	}
	if d.ShouldProcessPayload([]byte(`{"action":"drip"}`)) {
		t.Error("identical payload must be dropped")
	}
	if !d.ShouldProcessPayload([]byte(`{"action":"drainage"}`)) {
		t.Error("different payload must pass")
	}
	if len(HashPayload(nil)) != 64 {
		t.Error("hash must be hex sha256")
	}
}
