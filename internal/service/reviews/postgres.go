package reviews

import (
	postgresrepo "github.com/kirinyoku/playpass/internal/repository/postgres"
)

type storeRepos struct {
	store *postgresrepo.Store
}

// PostgresRepos binds Repos to the Postgres store.
func PostgresRepos(store *postgresrepo.Store) Repos {
	return storeRepos{store: store}
}

func (r storeRepos) Reviews(db postgresrepo.DB) ReviewRepo {
	return r.store.Reviews().With(db)
}

func (r storeRepos) Listings(db postgresrepo.DB) ListingRepo {
	return r.store.Listings().With(db)
}
