// Package chainfile reads the static chain data of a deployment from a TOML
// file: the accounts allowed to govern the asset registry and the protocol
// versions known for each destination.
//
//	admins = ["0x8eaf04151687736326c9fea17e25fc5287613693c912909cb226aa4794f26a48"]
//
//	[[destinations]]
//	location = "../Parachain(2000)"
//	version = 2
package chainfile

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/internal/core/ports"
	"github.com/pelletier/go-toml/v2"
	log "github.com/sirupsen/logrus"
)

// RootCaller is the operator itself and is always privileged.
const RootCaller = "root"

type file struct {
	Admins       []string      `toml:"admins"`
	Destinations []destination `toml:"destinations"`
}

type destination struct {
	Location string `toml:"location"`
	Version  uint8  `toml:"version"`
}

type ChainFile struct {
	path string

	lock     sync.RWMutex
	admins   map[string]struct{}
	versions []ports.DestinationVersion
}

// Load parses the file at path. An empty path yields a chain file with no
// admins besides RootCaller and no destinations.
func Load(path string) (*ChainFile, error) {
	c := &ChainFile{path: path, admins: make(map[string]struct{})}
	if path == "" {
		return c, nil
	}
	if err := c.reload(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *ChainFile) IsPrivileged(_ context.Context, caller string) bool {
	if caller == RootCaller {
		return true
	}
	account, err := domain.ParseAccount(caller)
	if err != nil {
		return false
	}

	c.lock.RLock()
	defer c.lock.RUnlock()

	_, ok := c.admins[account]
	return ok
}

// Versions re-reads the file so edits are picked up by the periodic
// refresh. On a parse error the last good content is kept.
func (c *ChainFile) Versions(_ context.Context) ([]ports.DestinationVersion, error) {
	if c.path != "" {
		if err := c.reload(); err != nil {
			log.WithError(err).Warnf("keeping previous content of %s", c.path)
		}
	}

	c.lock.RLock()
	defer c.lock.RUnlock()

	return append([]ports.DestinationVersion(nil), c.versions...), nil
}

func (c *ChainFile) reload() error {
	buf, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("failed to read chain file: %w", err)
	}

	var f file
	if err := toml.Unmarshal(buf, &f); err != nil {
		return fmt.Errorf("failed to parse chain file %s: %w", c.path, err)
	}

	admins := make(map[string]struct{}, len(f.Admins))
	for _, admin := range f.Admins {
		account, err := domain.ParseAccount(admin)
		if err != nil {
			return fmt.Errorf("invalid admin in %s: %w", c.path, err)
		}
		admins[account] = struct{}{}
	}

	versions := make([]ports.DestinationVersion, 0, len(f.Destinations))
	for i, d := range f.Destinations {
		loc, err := domain.ParseLocation(d.Location)
		if err != nil {
			return fmt.Errorf("invalid location of destination %d in %s: %w", i, c.path, err)
		}
		version := domain.Version(d.Version)
		if !version.Supported() {
			return fmt.Errorf(
				"unsupported version %d for destination %s in %s", d.Version, loc, c.path,
			)
		}
		versions = append(versions, ports.DestinationVersion{Destination: loc, Version: version})
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	c.admins = admins
	c.versions = versions
	return nil
}
