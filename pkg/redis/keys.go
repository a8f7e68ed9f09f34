package redis

import (
	"slices"
	"strings"
)

// Every key lives under "lit:". Blank parts are dropped, so
// CartKey(" emp-1 ") and CartKey("emp-1") name the same key.
const keyNamespace = "lit"

func (c *Client) IdempotencyKey(scope, id string) string {
	return buildKey("idempotency", scope, id)
}

func (c *Client) RateLimitKey(scope string) string {
	return buildKey("rate_limit", scope)
}

// AccessSessionKey holds the refresh session behind an access token jti.
func (c *Client) AccessSessionKey(accessID string) string {
	return buildKey("session", "access", accessID)
}

// CartKey holds an employee's open POS cart.
func (c *Client) CartKey(employeeID string) string {
	return buildKey("cart", employeeID)
}

func (c *Client) LockKey(name string) string {
	return buildKey("lock", name)
}

func buildKey(parts ...string) string {
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	parts = slices.DeleteFunc(parts, func(p string) bool { return p == "" })
	return strings.Join(append([]string{keyNamespace}, parts...), ":")
}
