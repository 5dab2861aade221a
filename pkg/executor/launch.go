package executor

import (
	"context"

	"github.com/devicelab-dev/translator-runner/pkg/core"
)

// SessionManager acquires and releases the session a run drives.
type SessionManager interface {
	Acquire(ctx context.Context) (core.Session, error)
	Release(ctx context.Context, s core.Session)
}

// Launch acquires a session and navigates the app to its home screen. On
// success the caller owns the returned session and must release it. On
// failure the session has already been released.
func Launch(ctx context.Context, m SessionManager, r *Runner) (core.Session, *RunResult, error) {
	s, err := m.Acquire(ctx)
	if err != nil {
		return nil, nil, err
	}
	result, err := r.Run(ctx, s)
	if err != nil {
		m.Release(ctx, s)
		return nil, result, err
	}
	return s, result, nil
}
