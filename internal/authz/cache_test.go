// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package authz

import (
	"testing"
	"time"
)

func TestNewDecisionCache_DefaultTTL(t *testing.T) {
	for _, ttl := range []time.Duration{0, -time.Second} {
		c := newDecisionCache(ttl)
		if c.ttl != defaultCacheTTL {
			t.Errorf("newDecisionCache(%v).ttl = %v, want %v", ttl, c.ttl, defaultCacheTTL)
		}
		c.stop()
	}
}

func TestDecisionCache_SetGet(t *testing.T) {
	c := newDecisionCache(time.Minute)
	defer c.stop()

	key := decisionKey{role: "staff", object: "/movies/", action: ActionWrite}
	if _, ok := c.get(key); ok {
		t.Fatal("empty cache returned a decision")
	}

	c.set(key, true)
	if allowed, ok := c.get(key); !ok || !allowed {
		t.Errorf("get() = %v, %v, want true, true", allowed, ok)
	}

	c.clear()
	if _, ok := c.get(key); ok {
		t.Error("decision survived clear()")
	}
}

func TestDecisionCache_Expiry(t *testing.T) {
	c := newDecisionCache(time.Minute)
	defer c.stop()

	key := decisionKey{role: "viewer", object: "/", action: ActionRead}
	c.set(key, true)

	c.evictExpired(time.Now().Add(2 * time.Minute))
	if c.len() != 0 {
		t.Errorf("len() after eviction = %d, want 0", c.len())
	}
}

func TestDecisionCache_StopIdempotent(t *testing.T) {
	c := newDecisionCache(time.Minute)
	c.stop()
	c.stop()
}
