package redislivestore

import (
	"github.com/arkade-os/xreserve/internal/core/ports"
	"github.com/redis/go-redis/v9"
)

type liveStore struct {
	balances ports.BalanceStore
	versions ports.VersionDirectory
}

func NewLiveStore(rdb *redis.Client, numOfRetries int) ports.LiveStore {
	return &liveStore{
		balances: NewBalanceStore(rdb, numOfRetries),
		versions: NewVersionDirectory(rdb),
	}
}

func (s *liveStore) Balances() ports.BalanceStore {
	return s.balances
}

func (s *liveStore) Versions() ports.VersionDirectory {
	return s.versions
}
