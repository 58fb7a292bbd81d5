package redislivestore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/internal/core/ports"
	"github.com/redis/go-redis/v9"
)

const balancesKeyPrefix = "balanceStore:"

type balanceStore struct {
	rdb          *redis.Client
	numOfRetries int
	retryDelay   time.Duration
}

func NewBalanceStore(rdb *redis.Client, numOfRetries int) ports.BalanceStore {
	if numOfRetries <= 0 {
		numOfRetries = 1
	}
	return &balanceStore{
		rdb:          rdb,
		numOfRetries: numOfRetries,
		retryDelay:   10 * time.Millisecond,
	}
}

func (s *balanceStore) Balance(ctx context.Context, account, currency string) (uint64, error) {
	return readBalance(ctx, s.rdb, account, currency)
}

func (s *balanceStore) Balances(ctx context.Context, account string) (map[string]uint64, error) {
	values, err := s.rdb.HGetAll(ctx, balancesKey(account)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get balances of %s: %v", account, err)
	}
	balances := make(map[string]uint64, len(values))
	for currency, value := range values {
		amount, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf(
				"malformed balance in storage %s/%s: %v", account, currency, err,
			)
		}
		balances[currency] = amount
	}
	return balances, nil
}

func (s *balanceStore) Debit(ctx context.Context, account, currency string, amount uint64) error {
	if amount == 0 {
		_, err := s.Balance(ctx, account, currency)
		return err
	}
	return s.update(ctx, account, currency, func(current uint64) (uint64, error) {
		if current < amount {
			return 0, domain.ErrInsufficientBalance
		}
		return current - amount, nil
	})
}

func (s *balanceStore) Credit(ctx context.Context, account, currency string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	return s.update(ctx, account, currency, func(current uint64) (uint64, error) {
		if current > math.MaxUint64-amount {
			return 0, domain.ErrBalanceOverflow
		}
		return current + amount, nil
	})
}

// update applies fn to the current balance under WATCH, retrying only when
// another client touched the account in between.
func (s *balanceStore) update(
	ctx context.Context, account, currency string, fn func(uint64) (uint64, error),
) error {
	key := balancesKey(account)

	var err error
	for range s.numOfRetries {
		err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			current, err := readBalance(ctx, tx, account, currency)
			if err != nil {
				return err
			}
			next, err := fn(current)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				if next == 0 {
					pipe.HDel(ctx, key, currency)
					return nil
				}
				pipe.HSet(ctx, key, currency, strconv.FormatUint(next, 10))
				return nil
			})
			return err
		}, key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		time.Sleep(s.retryDelay)
	}
	return fmt.Errorf(
		"failed to update balance %s/%s after max number of retries: %v", account, currency, err,
	)
}

type hashGetter interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
}

func readBalance(ctx context.Context, c hashGetter, account, currency string) (uint64, error) {
	value, err := c.HGet(ctx, balancesKey(account), currency).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get balance %s/%s: %v", account, currency, err)
	}
	amount, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed balance in storage %s/%s: %v", account, currency, err)
	}
	return amount, nil
}

func balancesKey(account string) string {
	return balancesKeyPrefix + account
}
