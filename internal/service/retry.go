package service

import (
	"context"
	"errors"
	"fmt"
	"seatLedger/internal/storage"
)

const DefaultMaxAttempts = 5

// retryOnConflict runs fn until it stops failing with a version conflict.
// Every attempt must re-read the event it writes.
func retryOnConflict(ctx context.Context, op string, maxAttempts int, fn func() error) error {
	var err error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		err = fn()
		if !errors.Is(err, storage.ErrVersionConflict) {
			return err
		}
	}

	return fmt.Errorf("%s: %d attempts: %w", op, maxAttempts, ErrConflict)
}
