package storage

import (
	"context"
	"time"
)

// deadlineOf turns the context deadline into the form gridfs streams expect, zero means none.
func deadlineOf(ctx context.Context) time.Time {
	if deadline, ok := ctx.Deadline(); ok {
		return deadline
	}
	return time.Time{}
}
