package partners

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

func (r storeRepos) Partners(db postgresrepo.DB) PartnerRepo {
	return r.store.Partners().With(db)
}

func (r storeRepos) Listings(db postgresrepo.DB) ListingRepo {
	return r.store.Listings().With(db)
}
