package scim_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-scim-gateway/internal/utils"
	"github.com/jrsteele09/go-scim-gateway/scim"
)

const testLocationBase = "https://api.slack.com/scim/v2/Users"

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestTranslator() *scim.Translator {
	nextID := 0
	return scim.NewTranslator(testLocationBase,
		scim.WithNowTime(fixedClock),
		scim.WithIDGenerator(func() string {
			nextID++
			return "00000000-0000-0000-0000-00000000000" + string(rune('0'+nextID))
		}),
	)
}

func fullRecord() *scim.User {
	startDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return &scim.User{
		ID:         "8b0c9f4e-1111-2222-3333-444455556666",
		ExternalID: "emp-1042",
		UserName:   "jane.doe@example.com",
		Name: scim.Name{
			Formatted:       "Dr. Jane A Doe",
			FamilyName:      "Doe",
			GivenName:       "Jane",
			MiddleName:      "A",
			HonorificPrefix: "Dr.",
		},
		DisplayName: "Jane Doe",
		Title:       "Engineer",
		Active:      true,
		Emails: []scim.Email{
			{Value: "jane.doe@example.com", Type: "work", Primary: true},
			{Value: "jane@home.example", Type: "home"},
		},
		PhoneNumbers: []scim.PhoneNumber{{Value: "+1-555-0100", Type: "work", Primary: true}},
		Addresses: []scim.Address{{
			StreetAddress: "100 Main St",
			Locality:      "Springfield",
			Region:        "IL",
			PostalCode:    "62701",
			Country:       "US",
			Type:          "work",
			Primary:       true,
		}},
		Groups:         []scim.Group{{Value: "eng", Display: "Engineering", Type: "direct"}},
		Photos:         []scim.Photo{{Value: "https://example.com/jane.png", Type: "photo"}},
		Roles:          []scim.Role{{Value: "developer", Primary: true}},
		EmployeeNumber: "1042",
		CostCenter:     "CC-7",
		Organization:   "Acme",
		Division:       "R&D",
		Department:     "Platform",
		ManagerID:      "mgr-77",
		StartDate:      &startDate,
		Created:        time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC),
	}
}

func TestToWireDocumentShape(t *testing.T) {
	translator := newTestTranslator()
	record := fullRecord()

	doc := translator.ToWire(record)
	require.Equal(t, []string{scim.SchemaCore, scim.SchemaEnterprise, scim.SchemaWorkspace}, doc.Schemas)
	require.Equal(t, record.ID, doc.ID)
	require.NotNil(t, doc.Meta)
	require.Equal(t, testLocationBase+"/"+record.ID, doc.Meta.Location)
	require.Equal(t, "2024-01-10T09:30:00Z", doc.Meta.Created)
	require.NotNil(t, doc.Enterprise.Manager)
	require.Equal(t, "mgr-77", doc.Enterprise.Manager.ManagerID)
	require.Equal(t, "2024-01-15T00:00:00Z", *doc.Workspace.StartDate)

	// Extension objects are keyed by their schema URNs on the wire.
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	var asMap map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &asMap))
	require.Contains(t, asMap, scim.SchemaEnterprise)
	require.Contains(t, asMap, scim.SchemaWorkspace)
	require.Contains(t, asMap, "userName")
	require.NotContains(t, asMap, "user_name")
}

func TestWireRoundTrip(t *testing.T) {
	translator := newTestTranslator()
	record := fullRecord()

	doc := translator.ToWire(record)

	// Through JSON, as a real mirror exchange would do.
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	var decoded scim.WireUser
	require.NoError(t, json.Unmarshal(raw, &decoded))

	got, err := translator.FromWire(&decoded, nil, false)
	require.NoError(t, err)

	// Server-managed fields are carried through, not regenerated.
	require.Equal(t, record.ID, got.ID)
	require.Equal(t, record.Created, got.Created)

	require.Equal(t, record.UserName, got.UserName)
	require.Equal(t, record.Name, got.Name)
	require.Equal(t, record.Emails, got.Emails)
	require.Equal(t, record.PhoneNumbers, got.PhoneNumbers)
	require.Equal(t, record.Addresses, got.Addresses)
	require.Equal(t, record.Groups, got.Groups)
	require.Equal(t, record.Photos, got.Photos)
	require.Equal(t, record.Roles, got.Roles)
	require.Equal(t, record.EmployeeNumber, got.EmployeeNumber)
	require.Equal(t, record.CostCenter, got.CostCenter)
	require.Equal(t, record.Organization, got.Organization)
	require.Equal(t, record.Division, got.Division)
	require.Equal(t, record.Department, got.Department)
	require.Equal(t, record.ManagerID, got.ManagerID)
	require.Equal(t, record.StartDate.UTC(), got.StartDate.UTC())
	require.Equal(t, record.Active, got.Active)
}

func TestNewResourceSynthesizesServerFields(t *testing.T) {
	translator := newTestTranslator()

	doc := &scim.WireUser{
		UserName:    utils.Ptr("new.user@example.com"),
		DisplayName: utils.Ptr("New User"),
	}

	got, err := translator.NewResource(doc)
	require.NoError(t, err)
	require.NotEmpty(t, got.ID)
	require.Equal(t, fixedClock(), got.Created)
	require.Equal(t, fixedClock(), got.LastModified)
	require.Equal(t, "1", got.Version)
	require.True(t, got.Active, "active defaults to true on create")
}

func TestUserNameSynthesis(t *testing.T) {
	translator := newTestTranslator()

	t.Run("prefers primary email", func(t *testing.T) {
		doc := &scim.WireUser{
			Emails: []scim.WireEmail{
				{Value: "second@example.com", Type: "home"},
				{Value: "primary@example.com", Type: "work", Primary: true},
			},
		}
		got, err := translator.NewResource(doc)
		require.NoError(t, err)
		require.Equal(t, "primary@example.com", got.UserName)
	})

	t.Run("falls back to first email", func(t *testing.T) {
		doc := &scim.WireUser{
			Emails: []scim.WireEmail{{Value: "only@example.com", Type: "work"}},
		}
		got, err := translator.NewResource(doc)
		require.NoError(t, err)
		require.Equal(t, "only@example.com", got.UserName)
	})

	t.Run("derives from resource identifier", func(t *testing.T) {
		doc := &scim.WireUser{DisplayName: utils.Ptr("No Contact Info")}
		got, err := translator.NewResource(doc)
		require.NoError(t, err)
		require.Equal(t, "user_"+got.ID[:8], got.UserName)
	})
}

func TestPrimaryAutoDemotion(t *testing.T) {
	translator := newTestTranslator()

	doc := &scim.WireUser{
		UserName: utils.Ptr("multi.primary@example.com"),
		Emails: []scim.WireEmail{
			{Value: "first@example.com", Primary: true},
			{Value: "second@example.com", Primary: true},
			{Value: "third@example.com", Primary: true},
		},
	}

	got, err := translator.NewResource(doc)
	require.NoError(t, err)
	require.True(t, got.Emails[0].Primary)
	require.False(t, got.Emails[1].Primary)
	require.False(t, got.Emails[2].Primary)
}

func TestFromWirePartialFallsBack(t *testing.T) {
	translator := newTestTranslator()
	existing := fullRecord()

	patch := &scim.WireUser{Title: utils.Ptr("Senior Developer")}

	got, err := translator.FromWire(patch, existing, true)
	require.NoError(t, err)
	require.Equal(t, "Senior Developer", got.Title)
	require.Equal(t, existing.UserName, got.UserName)
	require.Equal(t, existing.Emails, got.Emails)
	require.Equal(t, existing.Name, got.Name)
	require.Equal(t, existing.Department, got.Department)
	require.Equal(t, existing.Active, got.Active)
	require.Equal(t, existing.ID, got.ID)
}

func TestFromWireFullReplaceClearsAbsentFields(t *testing.T) {
	translator := newTestTranslator()
	existing := fullRecord()

	replacement := &scim.WireUser{
		UserName: utils.Ptr("jane.doe@example.com"),
		Active:   utils.Ptr(false),
	}

	got, err := translator.FromWire(replacement, existing, false)
	require.NoError(t, err)
	require.Equal(t, "jane.doe@example.com", got.UserName)
	require.False(t, got.Active)
	require.Empty(t, got.Title)
	require.Empty(t, got.Emails)
	require.Empty(t, got.Department)
	// Identifier and creation time survive a full replace.
	require.Equal(t, existing.ID, got.ID)
	require.Equal(t, existing.Created, got.Created)
}

func TestFromWireMalformedStartDate(t *testing.T) {
	translator := newTestTranslator()

	doc := &scim.WireUser{
		UserName:  utils.Ptr("x@example.com"),
		Workspace: &scim.WireWorkspace{StartDate: utils.Ptr("15/01/2024")},
	}

	_, err := translator.FromWire(doc, nil, false)
	require.Error(t, err)
}
