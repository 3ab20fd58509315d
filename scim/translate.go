package scim

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	apperrors "github.com/jrsteele09/go-scim-gateway/internal/errors"
	"github.com/jrsteele09/go-scim-gateway/internal/utils"
)

// Translator maps canonical user records to and from the SCIM wire schema,
// synthesizing the server-managed fields.
type Translator struct {
	locationBase string
	nowTime      func() time.Time // injectable for testing
	newID        func() string
}

// TranslatorOption defines a function type to modify the Translator instance.
type TranslatorOption func(*Translator)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) TranslatorOption {
	return func(t *Translator) {
		t.nowTime = nowFunc
	}
}

// WithIDGenerator sets the resource identifier generator (primarily for testing)
func WithIDGenerator(newID func() string) TranslatorOption {
	return func(t *Translator) {
		t.newID = newID
	}
}

// NewTranslator creates a Translator. locationBase is the URI prefix for the
// meta.location of translated resources.
func NewTranslator(locationBase string, options ...TranslatorOption) *Translator {
	t := &Translator{
		locationBase: locationBase,
		nowTime:      time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// ToWire produces the multi-schema document for a canonical record.
func (t *Translator) ToWire(u *User) *WireUser {
	doc := &WireUser{
		Schemas: []string{SchemaCore, SchemaEnterprise, SchemaWorkspace},
		ID:      u.ID,
		Active:  utils.Ptr(u.Active),
		Name: &WireName{
			Formatted:       ptrIfSet(u.Name.Formatted),
			FamilyName:      ptrIfSet(u.Name.FamilyName),
			GivenName:       ptrIfSet(u.Name.GivenName),
			MiddleName:      ptrIfSet(u.Name.MiddleName),
			HonorificPrefix: ptrIfSet(u.Name.HonorificPrefix),
			HonorificSuffix: ptrIfSet(u.Name.HonorificSuffix),
		},
		ExternalID:        ptrIfSet(u.ExternalID),
		UserName:          ptrIfSet(u.UserName),
		DisplayName:       ptrIfSet(u.DisplayName),
		NickName:          ptrIfSet(u.NickName),
		ProfileURL:        ptrIfSet(u.ProfileURL),
		Title:             ptrIfSet(u.Title),
		UserType:          ptrIfSet(u.UserType),
		PreferredLanguage: ptrIfSet(u.PreferredLanguage),
		Locale:            ptrIfSet(u.Locale),
		Timezone:          ptrIfSet(u.Timezone),
		Enterprise: &WireEnterprise{
			EmployeeNumber: ptrIfSet(u.EmployeeNumber),
			CostCenter:     ptrIfSet(u.CostCenter),
			Organization:   ptrIfSet(u.Organization),
			Division:       ptrIfSet(u.Division),
			Department:     ptrIfSet(u.Department),
		},
		Workspace: &WireWorkspace{},
	}

	if u.ManagerID != "" {
		doc.Enterprise.Manager = &WireManager{ManagerID: u.ManagerID}
	}
	if u.StartDate != nil {
		doc.Workspace.StartDate = utils.Ptr(u.StartDate.UTC().Format(time.RFC3339))
	}

	for _, e := range u.Emails {
		doc.Emails = append(doc.Emails, WireEmail(e))
	}
	for _, p := range u.PhoneNumbers {
		doc.PhoneNumbers = append(doc.PhoneNumbers, WirePhoneNumber(p))
	}
	for _, a := range u.Addresses {
		doc.Addresses = append(doc.Addresses, WireAddress{
			Formatted:     a.Formatted,
			StreetAddress: a.StreetAddress,
			Locality:      a.Locality,
			Region:        a.Region,
			PostalCode:    a.PostalCode,
			Country:       a.Country,
			Type:          a.Type,
			Primary:       a.Primary,
		})
	}
	for _, g := range u.Groups {
		doc.Groups = append(doc.Groups, WireGroup(g))
	}
	for _, p := range u.Photos {
		doc.Photos = append(doc.Photos, WirePhoto(p))
	}
	for _, r := range u.Roles {
		doc.Roles = append(doc.Roles, WireRole(r))
	}

	if u.ID != "" {
		doc.Meta = &WireMeta{Location: fmt.Sprintf("%s/%s", t.locationBase, u.ID)}
		if !u.Created.IsZero() {
			doc.Meta.Created = u.Created.UTC().Format(time.RFC3339)
		}
	}

	return doc
}

// NewResource builds a canonical record from a wire document for a create.
// The resource identifier, timestamps, and version are synthesized here and
// immutable afterwards. A record with no active flag defaults to active.
func (t *Translator) NewResource(doc *WireUser) (*User, error) {
	now := t.nowTime().UTC()
	seed := &User{
		ID:           t.newID(),
		Created:      now,
		LastModified: now,
		Version:      "1",
	}
	u, err := t.FromWire(doc, seed, false)
	if err != nil {
		return nil, err
	}
	if doc.Active == nil {
		u.Active = true
	}
	return u, nil
}

// FromWire maps a wire document onto a canonical record. With partial set,
// fields absent from the document fall back to the existing record; a full
// replace takes the document as authoritative and clears absent fields.
// Server-managed fields (identifier, creation timestamp, version) are
// carried from the existing record, never regenerated.
func (t *Translator) FromWire(doc *WireUser, existing *User, partial bool) (*User, error) {
	if doc == nil {
		return nil, errors.Wrap(apperrors.ErrValidation, "[Translator.FromWire] nil document")
	}
	if existing == nil {
		existing = &User{}
	}

	out := User{
		ID:           existing.ID,
		Created:      existing.Created,
		LastModified: existing.LastModified,
		Version:      existing.Version,
	}
	if out.ID == "" {
		out.ID = doc.ID
	}
	if out.Created.IsZero() && doc.Meta != nil && doc.Meta.Created != "" {
		created, err := time.Parse(time.RFC3339, doc.Meta.Created)
		if err != nil {
			return nil, errors.Wrap(apperrors.ErrValidation, "[Translator.FromWire] malformed meta.created")
		}
		out.Created = created
	}

	out.ExternalID = stringField(doc.ExternalID, existing.ExternalID, partial)
	out.UserName = stringField(doc.UserName, existing.UserName, partial)
	out.DisplayName = stringField(doc.DisplayName, existing.DisplayName, partial)
	out.NickName = stringField(doc.NickName, existing.NickName, partial)
	out.ProfileURL = stringField(doc.ProfileURL, existing.ProfileURL, partial)
	out.Title = stringField(doc.Title, existing.Title, partial)
	out.UserType = stringField(doc.UserType, existing.UserType, partial)
	out.PreferredLanguage = stringField(doc.PreferredLanguage, existing.PreferredLanguage, partial)
	out.Locale = stringField(doc.Locale, existing.Locale, partial)
	out.Timezone = stringField(doc.Timezone, existing.Timezone, partial)

	if doc.Active != nil {
		out.Active = *doc.Active
	} else if partial {
		out.Active = existing.Active
	}

	out.Name = t.nameFromWire(doc.Name, existing.Name, partial)
	t.collectionsFromWire(doc, existing, partial, &out)
	if err := t.extensionsFromWire(doc, existing, partial, &out); err != nil {
		return nil, err
	}

	// Username uniqueness is a storage invariant, so an omitted username is
	// synthesized rather than left empty.
	if out.UserName == "" {
		out.UserName = synthesizeUserName(&out)
	}

	return &out, nil
}

func (t *Translator) nameFromWire(wn *WireName, existing Name, partial bool) Name {
	if wn == nil {
		if partial {
			return existing
		}
		return Name{}
	}
	return Name{
		Formatted:       stringField(wn.Formatted, existing.Formatted, partial),
		FamilyName:      stringField(wn.FamilyName, existing.FamilyName, partial),
		GivenName:       stringField(wn.GivenName, existing.GivenName, partial),
		MiddleName:      stringField(wn.MiddleName, existing.MiddleName, partial),
		HonorificPrefix: stringField(wn.HonorificPrefix, existing.HonorificPrefix, partial),
		HonorificSuffix: stringField(wn.HonorificSuffix, existing.HonorificSuffix, partial),
	}
}

func (t *Translator) collectionsFromWire(doc *WireUser, existing *User, partial bool, out *User) {
	if doc.Emails != nil {
		for _, e := range doc.Emails {
			out.Emails = append(out.Emails, Email(e))
		}
		demoteExtraPrimaries(out.Emails, func(e *Email) *bool { return &e.Primary })
	} else if partial {
		out.Emails = existing.Emails
	}

	if doc.PhoneNumbers != nil {
		for _, p := range doc.PhoneNumbers {
			out.PhoneNumbers = append(out.PhoneNumbers, PhoneNumber(p))
		}
		demoteExtraPrimaries(out.PhoneNumbers, func(p *PhoneNumber) *bool { return &p.Primary })
	} else if partial {
		out.PhoneNumbers = existing.PhoneNumbers
	}

	if doc.Addresses != nil {
		for _, a := range doc.Addresses {
			out.Addresses = append(out.Addresses, Address{
				Formatted:     a.Formatted,
				StreetAddress: a.StreetAddress,
				Locality:      a.Locality,
				Region:        a.Region,
				PostalCode:    a.PostalCode,
				Country:       a.Country,
				Type:          a.Type,
				Primary:       a.Primary,
			})
		}
		demoteExtraPrimaries(out.Addresses, func(a *Address) *bool { return &a.Primary })
	} else if partial {
		out.Addresses = existing.Addresses
	}

	if doc.Groups != nil {
		for _, g := range doc.Groups {
			out.Groups = append(out.Groups, Group(g))
		}
	} else if partial {
		out.Groups = existing.Groups
	}

	if doc.Photos != nil {
		for _, p := range doc.Photos {
			out.Photos = append(out.Photos, Photo(p))
		}
	} else if partial {
		out.Photos = existing.Photos
	}

	if doc.Roles != nil {
		for _, r := range doc.Roles {
			out.Roles = append(out.Roles, Role(r))
		}
		demoteExtraPrimaries(out.Roles, func(r *Role) *bool { return &r.Primary })
	} else if partial {
		out.Roles = existing.Roles
	}
}

func (t *Translator) extensionsFromWire(doc *WireUser, existing *User, partial bool, out *User) error {
	if doc.Enterprise != nil {
		out.EmployeeNumber = stringField(doc.Enterprise.EmployeeNumber, existing.EmployeeNumber, partial)
		out.CostCenter = stringField(doc.Enterprise.CostCenter, existing.CostCenter, partial)
		out.Organization = stringField(doc.Enterprise.Organization, existing.Organization, partial)
		out.Division = stringField(doc.Enterprise.Division, existing.Division, partial)
		out.Department = stringField(doc.Enterprise.Department, existing.Department, partial)
		if doc.Enterprise.Manager != nil {
			out.ManagerID = doc.Enterprise.Manager.ManagerID
		} else if partial {
			out.ManagerID = existing.ManagerID
		}
	} else if partial {
		out.EmployeeNumber = existing.EmployeeNumber
		out.CostCenter = existing.CostCenter
		out.Organization = existing.Organization
		out.Division = existing.Division
		out.Department = existing.Department
		out.ManagerID = existing.ManagerID
	}

	if doc.Workspace != nil && doc.Workspace.StartDate != nil {
		startDate, err := time.Parse(time.RFC3339, *doc.Workspace.StartDate)
		if err != nil {
			return errors.Wrap(apperrors.ErrValidation, "[Translator.FromWire] malformed startDate")
		}
		out.StartDate = &startDate
	} else if partial {
		out.StartDate = existing.StartDate
	}

	return nil
}

// synthesizeUserName derives a deterministic username: the primary email if
// one exists, otherwise a prefix of the resource identifier.
func synthesizeUserName(u *User) string {
	if email := u.PrimaryEmail(); email != "" {
		return email
	}
	id := u.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return "user_" + id
}

// demoteExtraPrimaries enforces at most one primary entry per collection.
// The first entry marked primary wins; later ones are demoted on ingest.
func demoteExtraPrimaries[T any](items []T, primary func(*T) *bool) {
	seen := false
	for i := range items {
		p := primary(&items[i])
		if !*p {
			continue
		}
		if seen {
			*p = false
		}
		seen = true
	}
}

func stringField(v *string, existing string, partial bool) string {
	if v != nil {
		return *v
	}
	if partial {
		return existing
	}
	return ""
}

func ptrIfSet(v string) *string {
	if v == "" {
		return nil
	}
	return utils.Ptr(v)
}
