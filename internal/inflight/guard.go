// Package inflight collapses duplicate submissions of the same admin action.
package inflight

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"
)

// Guard runs at most one call per key at a time. A submission that arrives
// while an identical one is running waits for it and shares its result.
type Guard struct {
	group singleflight.Group
}

func NewGuard() *Guard {
	return &Guard{}
}

// Key builds a guard key from the actor fingerprint, action and target id.
// Submitted values go in payload so only identical submissions share a call.
func Key(actor, action, target string, payload ...string) string {
	parts := []string{actor, action, target}
	if len(payload) > 0 {
		parts = append(parts, Digest(payload...))
	}
	return strings.Join(parts, "|")
}

// Digest hashes values into a key component. Each value is length
// prefixed, so ("ab", "c") and ("a", "bc") differ.
func Digest(values ...string) string {
	h := sha256.New()
	for _, v := range values {
		h.Write([]byte(strconv.Itoa(len(v))))
		h.Write([]byte{':'})
		h.Write([]byte(v))
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// Do runs fn under key. shared reports whether the result came from a call
// started by another submission.
func (g *Guard) Do(ctx context.Context, key string, fn func(ctx context.Context) error) (shared bool, err error) {
	ch := g.group.DoChan(key, func() (any, error) {
		// the first caller's cancellation must not abort the shared call
		return nil, fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case res := <-ch:
		return res.Shared, res.Err
	}
}
