// Package ids issues primary keys and human-readable reference numbers.
//
// Primary keys are snowflake ids. Reference numbers keep the PREFIX-dddddd
// shape taken from the low six digits of the millisecond clock, and Reserve
// walks forward from that tail until it finds a value nobody holds yet.
package ids

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
)

const (
	PrefixCustomer = "CUS"
	PrefixProduct  = "PRD"
	PrefixOrder    = "ORD"
	PrefixService  = "SRV"
	PrefixInvoice  = "INV"
	PrefixUser     = "USR"
)

const (
	tailModulo         = 1000000
	defaultMaxAttempts = 64
)

var ErrExhausted = errors.New("no free custom id found")

// ExistsFunc reports whether a custom id is already taken.
type ExistsFunc func(ctx context.Context, customID string) (bool, error)

type Generator struct {
	node        *snowflake.Node
	now         func() time.Time
	maxAttempts int
}

func NewGenerator(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, errors.Wrapf(err, "snowflake node %d", nodeID)
	}
	return &Generator{node: node, now: time.Now, maxAttempts: defaultMaxAttempts}, nil
}

// WithClock replaces the clock used for custom ids. Intended for tests.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

func (g *Generator) NextID() snowflake.ID {
	return g.node.Generate()
}

// CustomID returns PREFIX-dddddd without checking uniqueness.
func (g *Generator) CustomID(prefix string) string {
	return format(prefix, tail(g.now()))
}

// Reserve returns the first custom id at or after the clock tail for which
// exists reports false.
func (g *Generator) Reserve(ctx context.Context, prefix string, exists ExistsFunc) (string, error) {
	t := tail(g.now())
	for i := 0; i < g.maxAttempts; i++ {
		candidate := format(prefix, (t+i)%tailModulo)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", errors.Wrap(err, "check custom id")
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", errors.Wrapf(ErrExhausted, "prefix %s after %d attempts", prefix, g.maxAttempts)
}

func tail(t time.Time) int {
	return int(t.UnixMilli() % tailModulo)
}

func format(prefix string, n int) string {
	return fmt.Sprintf("%s-%06d", prefix, n)
}

// Parse turns a path parameter into a snowflake id.
func Parse(s string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(s)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid id %q", s)
	}
	return id, nil
}
