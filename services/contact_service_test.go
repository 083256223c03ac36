package services

import (
	"context"
	"fmt"
	"testing"

	"coliseumAPI/internal/docstore"
	"coliseumAPI/internal/types/contact"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scanCaller = contact.RegisteredUser{ID: "me", Email: "me@example.com", Phone: "15550000000"}

func newContactFixture(t *testing.T) (*docstore.MemoryStore, *ContactService) {
	t.Helper()
	store := docstore.NewMemoryStore()
	seedUser(t, store, "me", "Me", "me@example.com", "15550000000")
	return store, NewContactService(NewUserService(store, testLogger()), testLogger())
}

func matchesByUser(matches []contact.Match) map[string]contact.Match {
	out := make(map[string]contact.Match, len(matches))
	for _, m := range matches {
		out[m.User.ID] = m
	}
	return out
}

func TestScanContactsRequiresPermission(t *testing.T) {
	_, svc := newContactFixture(t)

	_, err := svc.ScanContacts(context.Background(), scanCaller, &contact.ScanRequest{
		Contacts: []contact.Contact{{Name: "Alice", Emails: []string{"alice@example.com"}}},
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestScanContactsStrategiesInPriorityOrder(t *testing.T) {
	store, svc := newContactFixture(t)
	seedUser(t, store, "u-alice", "Alice A", "alice@example.com", "")
	seedUser(t, store, "u-pal", "Pal", "pp@example.com", "15551234567")
	seedUser(t, store, "u-john", "JS", "john.smith123@mail.com", "")
	seedUser(t, store, "u-stranger", "Nobody", "zzz.qqq@example.com", "")

	result, err := svc.ScanContacts(context.Background(), scanCaller, &contact.ScanRequest{
		PermissionGranted: true,
		Contacts: []contact.Contact{
			{Name: "Alice Adams", Emails: []string{" Alice@Example.com "}},
			{Name: "Phone Pal", Phones: []string{"(555) 123-4567"}},
			{Name: "John Smith"},
			{Name: "Me Myself", Emails: []string{"me@example.com"}, Phones: []string{"+1 555 000 0000"}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Scanned)
	assert.Zero(t, result.FailedBatches)
	require.Len(t, result.Matches, 3)

	byUser := matchesByUser(result.Matches)
	assert.Equal(t, contact.MatchedByEmail, byUser["u-alice"].MatchedBy)
	assert.Equal(t, "Alice Adams", byUser["u-alice"].ContactName)
	assert.Equal(t, contact.MatchedByPhone, byUser["u-pal"].MatchedBy)
	assert.Equal(t, "Phone Pal", byUser["u-pal"].ContactName)
	assert.Equal(t, contact.MatchedByNameFromEmail, byUser["u-john"].MatchedBy)
	assert.Equal(t, 100, byUser["u-john"].Score)
	assert.NotContains(t, byUser, "me")
	assert.NotContains(t, byUser, "u-stranger")
}

func TestScanContactsBatchesInQueries(t *testing.T) {
	store, svc := newContactFixture(t)

	var batchSizes []int
	store.Fail = func(op string, q docstore.Query) error {
		if op == "query" && len(q.Filters) == 1 && q.Filters[0].Field == "email" {
			batchSizes = append(batchSizes, len(q.Filters[0].Value.([]string)))
		}
		return nil
	}

	var contacts []contact.Contact
	for i := 0; i < 25; i++ {
		contacts = append(contacts, contact.Contact{
			Name:   fmt.Sprintf("Friend %02d", i),
			Emails: []string{fmt.Sprintf("friend%02d@example.com", i)},
		})
	}

	_, err := svc.ScanContacts(context.Background(), scanCaller, &contact.ScanRequest{
		PermissionGranted: true,
		Contacts:          contacts,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{10, 10, 5}, batchSizes)
}

func TestScanContactsKeepsMatchesWhenOneBatchFails(t *testing.T) {
	store, svc := newContactFixture(t)

	var contacts []contact.Contact
	for i := 0; i < 15; i++ {
		email := fmt.Sprintf("friend%02d@example.com", i)
		contacts = append(contacts, contact.Contact{Name: fmt.Sprintf("Pal %02d", i), Emails: []string{email}})
		seedUser(t, store, fmt.Sprintf("u%02d", i), "", email, "")
	}

	calls := 0
	store.Fail = func(op string, q docstore.Query) error {
		if op == "query" && len(q.Filters) == 1 && q.Filters[0].Field == "email" {
			calls++
			if calls == 1 {
				return assert.AnError
			}
		}
		return nil
	}

	result, err := svc.ScanContacts(context.Background(), scanCaller, &contact.ScanRequest{
		PermissionGranted: true,
		Contacts:          contacts,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.FailedBatches)

	byUser := matchesByUser(result.Matches)
	for i := 10; i < 15; i++ {
		assert.Equal(t, contact.MatchedByEmail, byUser[fmt.Sprintf("u%02d", i)].MatchedBy)
	}
	for i := 0; i < 10; i++ {
		assert.NotEqual(t, contact.MatchedByEmail, byUser[fmt.Sprintf("u%02d", i)].MatchedBy)
	}
}

func TestScanContactsFailsWhenEverythingFailed(t *testing.T) {
	store, svc := newContactFixture(t)
	store.Fail = func(op string, q docstore.Query) error {
		if op == "query" {
			return assert.AnError
		}
		return nil
	}

	_, err := svc.ScanContacts(context.Background(), scanCaller, &contact.ScanRequest{
		PermissionGranted: true,
		Contacts:          []contact.Contact{{Name: "Alice", Emails: []string{"alice@example.com"}}},
	})
	assert.Error(t, err)
}

func TestScanContactsDemoFallback(t *testing.T) {
	_, svc := newContactFixture(t)

	req := &contact.ScanRequest{
		PermissionGranted: true,
		Demo:              true,
		Contacts: []contact.Contact{
			{Name: "Dana Demo"}, {Name: "Eli Example"}, {Name: "Fay Fixture"}, {Name: "Gus Guest"},
		},
	}
	result, err := svc.ScanContacts(context.Background(), scanCaller, req)
	require.NoError(t, err)
	require.Len(t, result.Matches, 3)
	for _, m := range result.Matches {
		assert.Equal(t, contact.MatchedByDemo, m.MatchedBy)
		assert.NotNil(t, m.Demo)
	}

	req.Demo = false
	result, err = svc.ScanContacts(context.Background(), scanCaller, req)
	require.NoError(t, err)
	assert.Empty(t, result.Matches)
}

func TestScanContactsNameHeuristicCoversWholeDirectory(t *testing.T) {
	store, svc := newContactFixture(t)
	for i := 0; i < 2*directoryPageSize; i++ {
		seedUser(t, store, fmt.Sprintf("filler-%04d", i), "", fmt.Sprintf("filler%04d@example.com", i), "")
	}
	// Sorts after every filler id, so it lands on the last page.
	seedUser(t, store, "zz-john", "", "john.smith123@mail.com", "")

	result, err := svc.ScanContacts(context.Background(), scanCaller, &contact.ScanRequest{
		PermissionGranted: true,
		Contacts:          []contact.Contact{{Name: "John Smith"}},
	})
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, "zz-john", result.Matches[0].User.ID)
	assert.Equal(t, 100, result.Matches[0].Score)
}
