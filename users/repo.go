// Package users provides the repository for canonical user records. The
// gateway treats persistence as an external collaborator: everything here is
// plain storage behind the Repo interface.
package users

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	apperrors "github.com/jrsteele09/go-scim-gateway/internal/errors"
	"github.com/jrsteele09/go-scim-gateway/scim"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Repo is the canonical user record store. Implementations must enforce
// username uniqueness on Create and Update.
type Repo interface {
	Create(ctx context.Context, user *scim.User) error
	Get(ctx context.Context, id string) (*scim.User, error)
	GetByUserName(ctx context.Context, userName string) (*scim.User, error)
	List(ctx context.Context, filter Filter, startIndex, count int) ([]*scim.User, int, error)
	Update(ctx context.Context, user *scim.User) error
	Delete(ctx context.Context, id string) error
}

// Filter holds the supported equality filters.
type Filter struct {
	UserName *string
	Active   *bool
}

// ParseFilter parses a SCIM filter expression. Equality filters on userName
// and active are supported, e.g. `userName eq "jane@example.com"`.
func ParseFilter(expression string) (Filter, error) {
	var filter Filter
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return filter, nil
	}

	parts := strings.SplitN(expression, " ", 3)
	if len(parts) != 3 || !strings.EqualFold(parts[1], "eq") {
		return filter, errors.Wrap(apperrors.ErrValidation, "[ParseFilter] unsupported filter expression")
	}

	value := strings.Trim(parts[2], `"`)
	switch parts[0] {
	case "userName":
		filter.UserName = &value
	case "active":
		active, err := strconv.ParseBool(strings.ToLower(value))
		if err != nil {
			return filter, errors.Wrap(apperrors.ErrValidation, "[ParseFilter] active must be true or false")
		}
		filter.Active = &active
	default:
		return filter, errors.Wrap(apperrors.ErrValidation, "[ParseFilter] unsupported filter attribute "+parts[0])
	}
	return filter, nil
}

// Matches reports whether a record satisfies the filter.
func (f Filter) Matches(user *scim.User) bool {
	if f.UserName != nil && user.UserName != *f.UserName {
		return false
	}
	if f.Active != nil && user.Active != *f.Active {
		return false
	}
	return true
}

// ClampPage normalizes a 1-based start index and page size.
func ClampPage(startIndex, count int) (int, int) {
	if startIndex < 1 {
		startIndex = 1
	}
	if count <= 0 {
		count = DefaultPageSize
	}
	if count > MaxPageSize {
		count = MaxPageSize
	}
	return startIndex, count
}
