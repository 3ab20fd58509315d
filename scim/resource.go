// Package scim models the canonical user record and its SCIM wire form,
// and translates between the two.
package scim

import "time"

// User is the authoritative identity resource, independent of any wire
// schema. The resource identifier is immutable once assigned and the
// username is unique across all records.
type User struct {
	ID         string `json:"id,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
	UserName   string `json:"user_name"`

	Name        Name   `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	NickName    string `json:"nick_name,omitempty"`
	ProfileURL  string `json:"profile_url,omitempty"`
	Title       string `json:"title,omitempty"`
	UserType    string `json:"user_type,omitempty"`

	PreferredLanguage string `json:"preferred_language,omitempty"`
	Locale            string `json:"locale,omitempty"`
	Timezone          string `json:"timezone,omitempty"`

	Active bool `json:"active"`

	Emails       []Email       `json:"emails,omitempty"`
	PhoneNumbers []PhoneNumber `json:"phone_numbers,omitempty"`
	Addresses    []Address     `json:"addresses,omitempty"`
	Groups       []Group       `json:"groups,omitempty"`
	Photos       []Photo       `json:"photos,omitempty"`
	Roles        []Role        `json:"roles,omitempty"`

	// Enterprise attributes
	EmployeeNumber string `json:"employee_number,omitempty"`
	CostCenter     string `json:"cost_center,omitempty"`
	Organization   string `json:"organization,omitempty"`
	Division       string `json:"division,omitempty"`
	Department     string `json:"department,omitempty"`
	ManagerID      string `json:"manager_id,omitempty"`

	// Workspace attributes
	StartDate *time.Time `json:"start_date,omitempty"`

	// Server-managed audit fields
	Created      time.Time `json:"created,omitempty"`
	LastModified time.Time `json:"last_modified,omitempty"`
	Version      string    `json:"version,omitempty"`
}

// Name holds the structured name components.
type Name struct {
	Formatted       string `json:"formatted,omitempty"`
	FamilyName      string `json:"family_name,omitempty"`
	GivenName       string `json:"given_name,omitempty"`
	MiddleName      string `json:"middle_name,omitempty"`
	HonorificPrefix string `json:"honorific_prefix,omitempty"`
	HonorificSuffix string `json:"honorific_suffix,omitempty"`
}

type Email struct {
	Value   string `json:"value"`
	Type    string `json:"type,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

type PhoneNumber struct {
	Value   string `json:"value"`
	Type    string `json:"type,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

type Address struct {
	Formatted     string `json:"formatted,omitempty"`
	StreetAddress string `json:"street_address,omitempty"`
	Locality      string `json:"locality,omitempty"`
	Region        string `json:"region,omitempty"`
	PostalCode    string `json:"postal_code,omitempty"`
	Country       string `json:"country,omitempty"`
	Type          string `json:"type,omitempty"`
	Primary       bool   `json:"primary,omitempty"`
}

type Group struct {
	Value   string `json:"value"`
	Display string `json:"display,omitempty"`
	Type    string `json:"type,omitempty"`
}

type Photo struct {
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

type Role struct {
	Value   string `json:"value"`
	Primary bool   `json:"primary,omitempty"`
}

// PrimaryEmail returns the email marked primary, falling back to the first
// entry when none is marked.
func (u *User) PrimaryEmail() string {
	for _, e := range u.Emails {
		if e.Primary {
			return e.Value
		}
	}
	if len(u.Emails) > 0 {
		return u.Emails[0].Value
	}
	return ""
}
