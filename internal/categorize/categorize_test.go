package categorize

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/bookmark-sync/internal/domain"
)

// fakeRemote records what it was asked and answers from a script.
type fakeRemote struct {
	gotItems    []domain.RawItem
	gotPurposes []domain.Purpose
	calls       int
	groups      []domain.CategorizedGroup
	err         error
}

func (f *fakeRemote) Categorize(_ context.Context, items []domain.RawItem, purposes []domain.Purpose) ([]domain.CategorizedGroup, error) {
	f.calls++
	f.gotItems = items
	f.gotPurposes = purposes
	return f.groups, f.err
}

func makeItems(n int) []domain.RawItem {
	items := make([]domain.RawItem, n)
	for i := range items {
		items[i] = domain.RawItem{
			ID:     string(rune('a' + i)),
			Name:   "item",
			URL:    "https://example.com/" + string(rune('a'+i)),
			Source: domain.SourceBookmarks,
		}
	}
	return items
}

func TestPolicyEmptyInputsAreNoOps(t *testing.T) {
	remote := &fakeRemote{}
	p := NewPolicy(remote, PolicyOptions{})

	groups, err := p.Categorize(context.Background(), nil, []domain.Purpose{domain.PurposeWork})
	require.NoError(t, err)
	assert.Empty(t, groups)

	groups, err = p.Categorize(context.Background(), makeItems(3), nil)
	require.NoError(t, err)
	assert.Empty(t, groups)

	assert.Zero(t, remote.calls, "remote must not be called for empty inputs")
}

func TestPolicySmallInputSkipsRemote(t *testing.T) {
	remote := &fakeRemote{}
	p := NewPolicy(remote, PolicyOptions{SmallInputThreshold: 5})

	items := makeItems(3)
	groups, err := p.Categorize(context.Background(), items, []domain.Purpose{domain.PurposeWork, domain.PurposeSchool})
	require.NoError(t, err)

	require.Len(t, groups, 1)
	assert.Equal(t, "Imported", groups[0].Name)
	assert.Equal(t, domain.PurposeWork, groups[0].Purpose, "tagged with the first supplied purpose")
	assert.Equal(t, items, groups[0].Items)
	assert.Zero(t, remote.calls)
}

func TestPolicyTruncatesBatch(t *testing.T) {
	remote := &fakeRemote{groups: []domain.CategorizedGroup{{ID: "g1", Name: "Remote", Purpose: domain.PurposeWork}}}
	p := NewPolicy(remote, PolicyOptions{SmallInputThreshold: 2, MaxBatchSize: 10})

	p.Categorize(context.Background(), makeItems(25), []domain.Purpose{domain.PurposeWork})
	assert.Equal(t, 1, remote.calls)
	assert.Len(t, remote.gotItems, 10)
	assert.Equal(t, []domain.Purpose{domain.PurposeWork}, remote.gotPurposes, "full purpose list is sent")
}

func TestPolicyRemoteSuccessReturnedVerbatim(t *testing.T) {
	want := []domain.CategorizedGroup{
		{ID: "g1", Name: "Research", Purpose: domain.PurposeWork},
		// Unknown item ids are returned as-is; the registry write path
		// is responsible for tolerating them.
		{ID: "g2", Name: "Mystery", Purpose: domain.PurposeWork, Items: []domain.RawItem{{ID: "not-in-request"}}},
	}
	remote := &fakeRemote{groups: want}
	p := NewPolicy(remote, PolicyOptions{SmallInputThreshold: 2})

	groups, err := p.Categorize(context.Background(), makeItems(5), []domain.Purpose{domain.PurposeWork})
	require.NoError(t, err)
	assert.Equal(t, want, groups)
}

func TestPolicyFallbackCoversUntruncatedSet(t *testing.T) {
	remote := &fakeRemote{err: errors.New("upstream 503")}
	p := NewPolicy(remote, PolicyOptions{SmallInputThreshold: 2, MaxBatchSize: 5})

	items := makeItems(12)
	groups, err := p.Categorize(context.Background(), items, []domain.Purpose{domain.PurposeSchool})
	require.NoError(t, err, "remote failure degrades, never errors")

	require.Len(t, groups, 1)
	assert.Equal(t, "Imported", groups[0].Name)
	assert.Equal(t, domain.PurposeSchool, groups[0].Purpose)
	assert.Len(t, groups[0].Items, 12, "fallback covers the original set, not the truncated batch")
	assert.Len(t, remote.gotItems, 5, "the remote saw only the truncated batch")
}

func TestPolicyBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	remote := &fakeRemote{err: errors.New("down")}
	p := NewPolicy(remote, PolicyOptions{SmallInputThreshold: 2})

	items := makeItems(6)
	purposes := []domain.Purpose{domain.PurposeWork}
	for i := 0; i < 5; i++ {
		groups, err := p.Categorize(context.Background(), items, purposes)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, "Imported", groups[0].Name)
	}
	// After three consecutive failures the breaker is open and stops
	// forwarding calls; the fallback still answers.
	assert.Equal(t, 3, remote.calls)
}

func TestStubSinglePurpose(t *testing.T) {
	items := makeItems(3)
	groups, err := Stub{}.Categorize(context.Background(), items, []domain.Purpose{domain.PurposeWork})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Imported", groups[0].Name)
	assert.Equal(t, domain.PurposeWork, groups[0].Purpose)
	assert.Equal(t, items, groups[0].Items)
}

func TestStubBroadcastsAcrossPurposes(t *testing.T) {
	items := makeItems(2)
	groups, err := Stub{}.Categorize(context.Background(), items, []domain.Purpose{domain.PurposeWork, domain.PurposeSchool})
	require.NoError(t, err)

	require.Len(t, groups, 2)
	assert.Equal(t, "Imported – Work", groups[0].Name)
	assert.Equal(t, "Imported – School", groups[1].Name)
	assert.Equal(t, items, groups[0].Items, "broadcast, not partitioned")
	assert.Equal(t, items, groups[1].Items)
}

func TestStubUnknownPurposePassedVerbatim(t *testing.T) {
	groups, err := Stub{}.Categorize(context.Background(), makeItems(1),
		[]domain.Purpose{domain.PurposeWork, domain.Purpose("side-projects")})
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Imported – side-projects", groups[1].Name)
}

func TestStubEmpty(t *testing.T) {
	groups, err := Stub{}.Categorize(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, groups)
}
