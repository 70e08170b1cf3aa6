package repofakes

import (
	"sync"

	"github.com/accesswash/portal/internal/errors"
	"github.com/accesswash/portal/tenants"
)

var _ tenants.Repo = (*FakeTenantRepo)(nil)

// FakeTenantRepo is an in-memory tenant registry used by tests and by the
// local development wiring.
type FakeTenantRepo struct {
	lock    sync.RWMutex
	tenants map[string]*tenants.Tenant
}

func NewFakeTenantRepo() *FakeTenantRepo {
	return &FakeTenantRepo{
		tenants: make(map[string]*tenants.Tenant),
	}
}

func (r *FakeTenantRepo) Upsert(tenantData *tenants.Tenant) error {
	if tenantData == nil || tenantData.ID == "" {
		return errors.ErrInvalidTenant
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	copied := *tenantData
	r.tenants[tenantData.ID] = &copied
	return nil
}

func (r *FakeTenantRepo) Delete(tenantID string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.tenants, tenantID)
	return nil
}

func (r *FakeTenantRepo) Get(tenantID string) (*tenants.Tenant, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	t, ok := r.tenants[tenantID]
	if !ok {
		return nil, errors.ErrTenantNotFound
	}

	copied := *t
	return &copied, nil
}

func (r *FakeTenantRepo) List(offset, limit int) ([]*tenants.Tenant, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	all := make([]*tenants.Tenant, 0, len(r.tenants))
	for _, t := range r.tenants {
		copied := *t
		all = append(all, &copied)
	}

	if offset >= len(all) {
		return []*tenants.Tenant{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}
