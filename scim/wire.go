package scim

// Schema URNs carried by every translated user document.
const (
	SchemaCore         = "urn:ietf:params:scim:schemas:core:2.0:User"
	SchemaEnterprise   = "urn:ietf:params:scim:schemas:extension:enterprise:2.0:User"
	SchemaWorkspace    = "urn:ietf:params:scim:schemas:extension:slack:profile:2.0:User"
	SchemaListResponse = "urn:ietf:params:scim:api:messages:2.0:ListResponse"
)

// WireUser is the multi-schema SCIM document. Optional fields are pointers
// so that a partial payload (PATCH) is distinguishable from an explicit
// zero value; a full payload (PUT) treats absent fields as cleared.
type WireUser struct {
	Schemas    []string `json:"schemas,omitempty"`
	ID         string   `json:"id,omitempty"`
	ExternalID *string  `json:"externalId,omitempty"`
	UserName   *string  `json:"userName,omitempty"`

	Name        *WireName `json:"name,omitempty"`
	DisplayName *string   `json:"displayName,omitempty"`
	NickName    *string   `json:"nickName,omitempty"`
	ProfileURL  *string   `json:"profileUrl,omitempty"`
	Title       *string   `json:"title,omitempty"`
	UserType    *string   `json:"userType,omitempty"`

	PreferredLanguage *string `json:"preferredLanguage,omitempty"`
	Locale            *string `json:"locale,omitempty"`
	Timezone          *string `json:"timezone,omitempty"`

	Active *bool `json:"active,omitempty"`

	Emails       []WireEmail       `json:"emails,omitempty"`
	PhoneNumbers []WirePhoneNumber `json:"phoneNumbers,omitempty"`
	Addresses    []WireAddress     `json:"addresses,omitempty"`
	Groups       []WireGroup       `json:"groups,omitempty"`
	Photos       []WirePhoto       `json:"photos,omitempty"`
	Roles        []WireRole        `json:"roles,omitempty"`

	Meta *WireMeta `json:"meta,omitempty"`

	Enterprise *WireEnterprise `json:"urn:ietf:params:scim:schemas:extension:enterprise:2.0:User,omitempty"`
	Workspace  *WireWorkspace  `json:"urn:ietf:params:scim:schemas:extension:slack:profile:2.0:User,omitempty"`
}

type WireName struct {
	Formatted       *string `json:"formatted,omitempty"`
	FamilyName      *string `json:"familyName,omitempty"`
	GivenName       *string `json:"givenName,omitempty"`
	MiddleName      *string `json:"middleName,omitempty"`
	HonorificPrefix *string `json:"honorificPrefix,omitempty"`
	HonorificSuffix *string `json:"honorificSuffix,omitempty"`
}

type WireEmail struct {
	Value   string `json:"value"`
	Type    string `json:"type,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

type WirePhoneNumber struct {
	Value   string `json:"value"`
	Type    string `json:"type,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

type WireAddress struct {
	Formatted     string `json:"formatted,omitempty"`
	StreetAddress string `json:"streetAddress,omitempty"`
	Locality      string `json:"locality,omitempty"`
	Region        string `json:"region,omitempty"`
	PostalCode    string `json:"postalCode,omitempty"`
	Country       string `json:"country,omitempty"`
	Type          string `json:"type,omitempty"`
	Primary       bool   `json:"primary,omitempty"`
}

type WireGroup struct {
	Value   string `json:"value"`
	Display string `json:"display,omitempty"`
	Type    string `json:"type,omitempty"`
}

type WirePhoto struct {
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

type WireRole struct {
	Value   string `json:"value"`
	Primary bool   `json:"primary,omitempty"`
}

// WireMeta is the server-synthesized meta block.
type WireMeta struct {
	Created  string `json:"created,omitempty"`
	Location string `json:"location,omitempty"`
}

type WireEnterprise struct {
	EmployeeNumber *string      `json:"employeeNumber,omitempty"`
	CostCenter     *string      `json:"costCenter,omitempty"`
	Organization   *string      `json:"organization,omitempty"`
	Division       *string      `json:"division,omitempty"`
	Department     *string      `json:"department,omitempty"`
	Manager        *WireManager `json:"manager,omitempty"`
}

type WireManager struct {
	ManagerID string `json:"managerId"`
}

type WireWorkspace struct {
	StartDate *string `json:"startDate,omitempty"`
}

// ListResponse is the envelope for list results.
type ListResponse struct {
	Schemas      []string    `json:"schemas"`
	TotalResults int         `json:"totalResults"`
	StartIndex   int         `json:"startIndex"`
	ItemsPerPage int         `json:"itemsPerPage"`
	Resources    []*WireUser `json:"Resources"`
}
