package orders

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LatestIDFinder looks up the greatest order id carrying prefix among orders
// created at or after since.
type LatestIDFinder interface {
	LatestIDSince(ctx context.Context, since time.Time, prefix string) (id string, found bool, err error)
}

// IDAllocator derives DDMMYY-NNN order ids. It does not reserve anything: two
// allocations racing on the same day can return the same id, and the unique
// key on orders.id turns the loser into ErrIDCollision at insert time.
type IDAllocator struct {
	Finder   LatestIDFinder
	Location *time.Location
}

func (a IDAllocator) Allocate(ctx context.Context, now time.Time) (string, error) {
	if a.Location != nil {
		now = now.In(a.Location)
	}

	datePart := DatePart(now)

	latest, found, err := a.Finder.LatestIDSince(ctx, StartOfDay(now), datePart+"-")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAllocationQuery, err)
	}
	if !found {
		latest = ""
	}

	return NextID(datePart, latest), nil
}

// DatePart formats the calendar date of t in t's location as DDMMYY.
func DatePart(t time.Time) string {
	return t.Format("020106")
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// NextID returns the id following latest for datePart. An empty or malformed
// latest id restarts the sequence at 001.
func NextID(datePart, latest string) string {
	seq := 1

	if parts := strings.Split(latest, "-"); len(parts) == 2 {
		if n, err := strconv.Atoi(parts[1]); err == nil && n >= 0 {
			seq = n + 1
		}
	}

	return fmt.Sprintf("%s-%03d", datePart, seq)
}
