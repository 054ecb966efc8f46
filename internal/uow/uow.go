package uow

import (
	"context"

	"github.com/jackc/pgx/v5"

	postgresrepo "github.com/kirinyoku/playpass/internal/repository/postgres"
)

const maxAttempts = 3

// AfterCommit runs once the surrounding transaction has committed.
type AfterCommit func(ctx context.Context)

// Work is the body of a unit of work. Hooks registered through after run
// only if the transaction commits.
type Work func(ctx context.Context, tx postgresrepo.DB, after func(AfterCommit)) error

type UoW struct {
	store *postgresrepo.Store
}

func NewUoW(store *postgresrepo.Store) *UoW {
	return &UoW{store: store}
}

func (u *UoW) Do(ctx context.Context, fn Work) error {
	return u.DoWithOpts(ctx, nil, fn)
}

// DoWithOpts runs fn in a transaction, retrying serialization failures and
// deadlocks. Hooks from failed attempts are dropped.
func (u *UoW) DoWithOpts(ctx context.Context, opts *pgx.TxOptions, fn Work) error {
	var (
		hooks []AfterCommit
		err   error
	)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		hooks = hooks[:0]

		err = u.store.RunTx(ctx, opts, func(ctx context.Context, tx postgresrepo.DB) error {
			return fn(ctx, tx, func(h AfterCommit) {
				hooks = append(hooks, h)
			})
		})
		if err == nil || !postgresrepo.IsRetryable(err) {
			break
		}
	}
	if err != nil {
		return err
	}

	RunHooks(ctx, hooks)

	return nil
}

// RunHooks runs hooks on a context detached from the caller's cancellation,
// so a client disconnecting right after commit does not skip them.
func RunHooks(ctx context.Context, hooks []AfterCommit) {
	ctx = context.WithoutCancel(ctx)
	for _, h := range hooks {
		h(ctx)
	}
}
