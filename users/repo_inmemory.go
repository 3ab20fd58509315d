package users

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	apperrors "github.com/jrsteele09/go-scim-gateway/internal/errors"
	"github.com/jrsteele09/go-scim-gateway/scim"
)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo
// interface. It is the default store for development and tests.
type InMemoryRepo struct {
	mu      sync.RWMutex
	records map[string]*scim.User
	byName  map[string]string // userName -> id
}

var _ Repo = (*InMemoryRepo)(nil)

// NewInMemoryRepo creates an empty in-memory user repository.
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		records: make(map[string]*scim.User),
		byName:  make(map[string]string),
	}
}

func (r *InMemoryRepo) Create(_ context.Context, user *scim.User) error {
	if user == nil || user.ID == "" {
		return errors.Wrap(apperrors.ErrValidation, "[InMemoryRepo.Create] record requires an identifier")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[user.UserName]; exists {
		return errors.Wrap(apperrors.ErrDuplicateResource, "[InMemoryRepo.Create] username "+user.UserName)
	}
	if _, exists := r.records[user.ID]; exists {
		return errors.Wrap(apperrors.ErrDuplicateResource, "[InMemoryRepo.Create] id "+user.ID)
	}

	stored := *user
	r.records[user.ID] = &stored
	r.byName[user.UserName] = user.ID
	return nil
}

func (r *InMemoryRepo) Get(_ context.Context, id string) (*scim.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.records[id]
	if !ok {
		return nil, errors.Wrap(apperrors.ErrResourceNotFound, "[InMemoryRepo.Get] "+id)
	}
	u := *user
	return &u, nil
}

func (r *InMemoryRepo) GetByUserName(_ context.Context, userName string) (*scim.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[userName]
	if !ok {
		return nil, errors.Wrap(apperrors.ErrResourceNotFound, "[InMemoryRepo.GetByUserName] "+userName)
	}
	u := *r.records[id]
	return &u, nil
}

func (r *InMemoryRepo) List(_ context.Context, filter Filter, startIndex, count int) ([]*scim.User, int, error) {
	startIndex, count = ClampPage(startIndex, count)

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*scim.User, 0, len(r.records))
	for _, user := range r.records {
		if filter.Matches(user) {
			u := *user
			matched = append(matched, &u)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Created.Equal(matched[j].Created) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].Created.Before(matched[j].Created)
	})

	total := len(matched)
	offset := startIndex - 1
	if offset >= total {
		return []*scim.User{}, total, nil
	}
	end := offset + count
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *InMemoryRepo) Update(_ context.Context, user *scim.User) error {
	if user == nil || user.ID == "" {
		return errors.Wrap(apperrors.ErrValidation, "[InMemoryRepo.Update] record requires an identifier")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.records[user.ID]
	if !ok {
		return errors.Wrap(apperrors.ErrResourceNotFound, "[InMemoryRepo.Update] "+user.ID)
	}
	if otherID, exists := r.byName[user.UserName]; exists && otherID != user.ID {
		return errors.Wrap(apperrors.ErrDuplicateResource, "[InMemoryRepo.Update] username "+user.UserName)
	}

	delete(r.byName, current.UserName)
	stored := *user
	r.records[user.ID] = &stored
	r.byName[user.UserName] = user.ID
	return nil
}

func (r *InMemoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.records[id]
	if !ok {
		return errors.Wrap(apperrors.ErrResourceNotFound, "[InMemoryRepo.Delete] "+id)
	}
	delete(r.byName, user.UserName)
	delete(r.records, id)
	return nil
}
