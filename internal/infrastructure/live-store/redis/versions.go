package redislivestore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/internal/core/ports"
	"github.com/redis/go-redis/v9"
)

const versionsHashKey = "versionDirectory:versions"

type versionDirectory struct {
	rdb *redis.Client
}

func NewVersionDirectory(rdb *redis.Client) ports.VersionDirectory {
	return &versionDirectory{rdb}
}

func (s *versionDirectory) SupportedVersion(
	ctx context.Context, dest domain.Location,
) (domain.Version, bool, error) {
	key, err := dest.Key()
	if err != nil {
		return 0, false, err
	}
	value, err := s.rdb.HGet(ctx, versionsHashKey, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get version of %s: %v", dest, err)
	}
	version, err := strconv.ParseUint(value, 10, 8)
	if err != nil {
		return 0, false, fmt.Errorf("malformed version in storage for %s: %v", dest, err)
	}
	return domain.Version(version), true, nil
}

func (s *versionDirectory) SetSupportedVersion(
	ctx context.Context, dest domain.Location, version domain.Version,
) error {
	key, err := dest.Key()
	if err != nil {
		return err
	}
	if err := s.rdb.HSet(
		ctx, versionsHashKey, key, strconv.FormatUint(uint64(version), 10),
	).Err(); err != nil {
		return fmt.Errorf("failed to set version of %s: %v", dest, err)
	}
	return nil
}

func (s *versionDirectory) Forget(ctx context.Context, dest domain.Location) error {
	key, err := dest.Key()
	if err != nil {
		return err
	}
	if err := s.rdb.HDel(ctx, versionsHashKey, key).Err(); err != nil {
		return fmt.Errorf("failed to forget version of %s: %v", dest, err)
	}
	return nil
}
