package session

import (
	"context"
	"fmt"

	"morning-snapshot/internal/interfaces"
	"morning-snapshot/internal/logger"
)

// With acquires a session, runs body with it, and releases the session no
// matter how body exits. A panic inside body is converted to an error so one
// broken source cannot take down the whole run. Release failures are logged
// and never mask body's outcome.
func With(ctx context.Context, provider interfaces.SessionProvider, body func(s interfaces.Session) error) (err error) {
	s, acquireErr := provider.Acquire(ctx)
	if acquireErr != nil {
		return fmt.Errorf("acquire session: %w", acquireErr)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during fetch: %v", r)
		}
		if releaseErr := provider.Release(s); releaseErr != nil {
			logger.ErrorWithErr(ctx, "Session release failed", releaseErr)
		}
	}()

	return body(s)
}
