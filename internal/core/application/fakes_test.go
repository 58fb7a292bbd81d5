package application

import (
	"context"
	"sort"
	"sync"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) Enqueue(ctx context.Context, msg ports.OutboundMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockTransport) Close() error { return nil }

type staticAuthority map[string]bool

func (a staticAuthority) IsPrivileged(_ context.Context, caller string) bool {
	return a[caller]
}

type fakeRegistryRepo struct {
	byId  map[uint32]domain.Location
	byLoc map[string]uint32
}

func (r *fakeRegistryRepo) Register(_ context.Context, entry domain.RegistryEntry) error {
	key, err := entry.Location.Key()
	if err != nil {
		return err
	}
	if _, ok := r.byId[entry.LocalId]; ok {
		return domain.ErrLocalIdTaken
	}
	if _, ok := r.byLoc[key]; ok {
		return domain.ErrLocationTaken
	}
	r.byId[entry.LocalId] = entry.Location
	r.byLoc[key] = entry.LocalId
	return nil
}

func (r *fakeRegistryRepo) Unregister(_ context.Context, localId uint32) (*domain.RegistryEntry, error) {
	loc, ok := r.byId[localId]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	key, _ := loc.Key()
	delete(r.byId, localId)
	delete(r.byLoc, key)
	return &domain.RegistryEntry{LocalId: localId, Location: loc}, nil
}

func (r *fakeRegistryRepo) GetByLocalId(_ context.Context, localId uint32) (*domain.RegistryEntry, error) {
	loc, ok := r.byId[localId]
	if !ok {
		return nil, nil
	}
	return &domain.RegistryEntry{LocalId: localId, Location: loc}, nil
}

func (r *fakeRegistryRepo) GetByLocation(_ context.Context, loc domain.Location) (*domain.RegistryEntry, error) {
	key, err := loc.Key()
	if err != nil {
		return nil, err
	}
	id, ok := r.byLoc[key]
	if !ok {
		return nil, nil
	}
	return &domain.RegistryEntry{LocalId: id, Location: loc}, nil
}

func (r *fakeRegistryRepo) List(_ context.Context) ([]domain.RegistryEntry, error) {
	entries := make([]domain.RegistryEntry, 0, len(r.byId))
	for id, loc := range r.byId {
		entries = append(entries, domain.RegistryEntry{LocalId: id, Location: loc})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].LocalId < entries[j].LocalId })
	return entries, nil
}

func (r *fakeRegistryRepo) Close() {}

type fakeTrapRepo struct {
	records map[string]domain.TrapRecord
}

func (r *fakeTrapRepo) Trap(_ context.Context, record domain.TrapRecord) (*domain.TrapRecord, error) {
	if existing, ok := r.records[record.Hash]; ok {
		record.Count = existing.Count + 1
	} else {
		record.Count = 1
	}
	r.records[record.Hash] = record
	return &record, nil
}

func (r *fakeTrapRepo) Claim(_ context.Context, hash string) (*domain.TrapRecord, error) {
	record, ok := r.records[hash]
	if !ok {
		return nil, domain.ErrNotTrapped
	}
	record.Count--
	if record.Count == 0 {
		delete(r.records, hash)
	} else {
		r.records[hash] = record
	}
	return &record, nil
}

func (r *fakeTrapRepo) Get(_ context.Context, hash string) (*domain.TrapRecord, error) {
	record, ok := r.records[hash]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (r *fakeTrapRepo) List(_ context.Context) ([]domain.TrapRecord, error) {
	records := make([]domain.TrapRecord, 0, len(r.records))
	for _, record := range r.records {
		records = append(records, record)
	}
	return records, nil
}

func (r *fakeTrapRepo) Close() {}

type fakeRepoManager struct {
	registry *fakeRegistryRepo
	traps    *fakeTrapRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		registry: &fakeRegistryRepo{
			byId: make(map[uint32]domain.Location), byLoc: make(map[string]uint32),
		},
		traps: &fakeTrapRepo{records: make(map[string]domain.TrapRecord)},
	}
}

func (m *fakeRepoManager) Registry() domain.AssetRegistryRepository { return m.registry }
func (m *fakeRepoManager) Traps() domain.TrapRepository             { return m.traps }
func (m *fakeRepoManager) Close()                                   {}

type fakeLiveStore struct {
	balances *fakeBalances
	versions *fakeVersions
}

func newFakeLiveStore() *fakeLiveStore {
	return &fakeLiveStore{
		balances: &fakeBalances{entries: make(map[string]map[string]uint64)},
		versions: &fakeVersions{entries: make(map[string]domain.Version)},
	}
}

func (s *fakeLiveStore) Balances() ports.BalanceStore     { return s.balances }
func (s *fakeLiveStore) Versions() ports.VersionDirectory { return s.versions }

type fakeBalances struct {
	lock      sync.Mutex
	entries   map[string]map[string]uint64
	creditErr error
}

func (s *fakeBalances) Balance(_ context.Context, account, currency string) (uint64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.entries[account][currency], nil
}

func (s *fakeBalances) Balances(_ context.Context, account string) (map[string]uint64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := make(map[string]uint64)
	for currency, amount := range s.entries[account] {
		out[currency] = amount
	}
	return out, nil
}

func (s *fakeBalances) Debit(_ context.Context, account, currency string, amount uint64) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if amount == 0 {
		return nil
	}
	if s.entries[account][currency] < amount {
		return domain.ErrInsufficientBalance
	}
	s.entries[account][currency] -= amount
	return nil
}

func (s *fakeBalances) Credit(_ context.Context, account, currency string, amount uint64) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.creditErr != nil {
		return s.creditErr
	}
	if s.entries[account] == nil {
		s.entries[account] = make(map[string]uint64)
	}
	s.entries[account][currency] += amount
	return nil
}

type fakeVersions struct {
	entries map[string]domain.Version
}

func (s *fakeVersions) SupportedVersion(_ context.Context, dest domain.Location) (domain.Version, bool, error) {
	key, err := dest.Key()
	if err != nil {
		return 0, false, err
	}
	v, ok := s.entries[key]
	return v, ok, nil
}

func (s *fakeVersions) SetSupportedVersion(_ context.Context, dest domain.Location, v domain.Version) error {
	key, err := dest.Key()
	if err != nil {
		return err
	}
	s.entries[key] = v
	return nil
}

func (s *fakeVersions) Forget(_ context.Context, dest domain.Location) error {
	key, err := dest.Key()
	if err != nil {
		return err
	}
	delete(s.entries, key)
	return nil
}
