package inmemorylivestore

import (
	"context"
	"math"
	"sync"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/internal/core/ports"
)

type balanceStore struct {
	lock     sync.RWMutex
	balances map[string]map[string]uint64
}

func NewBalanceStore() ports.BalanceStore {
	return &balanceStore{
		balances: make(map[string]map[string]uint64),
	}
}

func (m *balanceStore) Balance(_ context.Context, account, currency string) (uint64, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return m.balances[account][currency], nil
}

func (m *balanceStore) Balances(_ context.Context, account string) (map[string]uint64, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	balances := make(map[string]uint64, len(m.balances[account]))
	for currency, amount := range m.balances[account] {
		balances[currency] = amount
	}
	return balances, nil
}

func (m *balanceStore) Debit(_ context.Context, account, currency string, amount uint64) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	current := m.balances[account][currency]
	if current < amount {
		return domain.ErrInsufficientBalance
	}
	if amount == 0 {
		return nil
	}
	if current == amount {
		delete(m.balances[account], currency)
		if len(m.balances[account]) == 0 {
			delete(m.balances, account)
		}
		return nil
	}
	m.balances[account][currency] = current - amount
	return nil
}

func (m *balanceStore) Credit(_ context.Context, account, currency string, amount uint64) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if amount == 0 {
		return nil
	}
	current := m.balances[account][currency]
	if current > math.MaxUint64-amount {
		return domain.ErrBalanceOverflow
	}
	if _, ok := m.balances[account]; !ok {
		m.balances[account] = make(map[string]uint64)
	}
	m.balances[account][currency] = current + amount
	return nil
}
