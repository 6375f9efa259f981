// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package authz

import (
	"sync"
	"time"
)

// defaultCacheTTL applies when the configured TTL is not positive.
const defaultCacheTTL = 5 * time.Minute

// decisionKey identifies one enforcement request.
type decisionKey struct {
	role   string
	object string
	action string
}

type decision struct {
	allowed   bool
	expiresAt time.Time
}

// decisionCache memoizes enforcer results per (role, object, action). Keys
// are roles rather than users, so the cache stays as small as the policy.
type decisionCache struct {
	ttl      time.Duration
	mu       sync.RWMutex
	items    map[decisionKey]decision
	stopChan chan struct{}
	stopOnce sync.Once
}

func newDecisionCache(ttl time.Duration) *decisionCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	c := &decisionCache{
		ttl:      ttl,
		items:    make(map[decisionKey]decision),
		stopChan: make(chan struct{}),
	}
	go c.cleanup()
	return c
}

func (c *decisionCache) get(key decisionKey) (allowed, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, found := c.items[key]
	if !found || time.Now().After(d.expiresAt) {
		return false, false
	}
	return d.allowed, true
}

func (c *decisionCache) set(key decisionKey, allowed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = decision{allowed: allowed, expiresAt: time.Now().Add(c.ttl)}
}

// clear drops every decision, used after a policy reload.
func (c *decisionCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[decisionKey]decision)
}

func (c *decisionCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// cleanup periodically removes expired decisions.
func (c *decisionCache) cleanup() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.evictExpired(time.Now())
		}
	}
}

func (c *decisionCache) evictExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, d := range c.items {
		if now.After(d.expiresAt) {
			delete(c.items, key)
		}
	}
}

// stop ends the cleanup goroutine. Safe to call more than once.
func (c *decisionCache) stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
}
