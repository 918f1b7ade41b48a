// Package mcproxy forwards requests that are not for virtual resources to
// the native resource API.
package mcproxy

import (
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Balancer implements middleware.ProxyBalancer, handing out its targets
// round robin.
type Balancer struct {
	mu      sync.Mutex
	targets []*middleware.ProxyTarget
	next    int
}

func NewBalancer(targets ...*middleware.ProxyTarget) *Balancer {
	return &Balancer{targets: targets}
}

func (b *Balancer) AddTarget(t *middleware.ProxyTarget) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.targets {
		if existing.Name == t.Name {
			return false
		}
	}

	b.targets = append(b.targets, t)
	return true
}

func (b *Balancer) RemoveTarget(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, t := range b.targets {
		if t.Name == name {
			b.targets = append(b.targets[:i], b.targets[i+1:]...)
			return true
		}
	}

	return false
}

// Next returns nil when there are no targets.
func (b *Balancer) Next(c echo.Context) *middleware.ProxyTarget {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.targets) == 0 {
		return nil
	}

	b.next = b.next % len(b.targets)
	t := b.targets[b.next]
	b.next++
	return t
}
