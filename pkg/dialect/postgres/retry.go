// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cloudflare/backoff"
	"github.com/lib/pq"
)

// lockNotAvailableErrorCode is raised by Postgres when a statement gives up
// waiting for a lock (e.g. a non-zero lock_timeout expires). Retrying these
// with backoff absorbs transient contention from concurrent schema changes
// without the engine itself needing to know about Postgres lock semantics.
const lockNotAvailableErrorCode pq.ErrorCode = "55P03"

const (
	maxBackoffDuration = 1 * time.Minute
	backoffInterval    = 1 * time.Second
)

// retry runs op, retrying with exponential backoff while op fails with a
// lock_not_available error, until ctx is done.
func retry(ctx context.Context, op func() error) error {
	b := backoff.New(maxBackoffDuration, backoffInterval)

	for {
		err := op()
		if err == nil {
			return nil
		}

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == lockNotAvailableErrorCode {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.Duration()):
				continue
			}
		}

		return err
	}
}
