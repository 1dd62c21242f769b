package safety

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/bookmark-sync/internal/domain"
)

func TestBlocklistMatchesURL(t *testing.T) {
	f := NewBlocklistFilter([]string{"casino"})
	ok, err := f.IsSafe(context.Background(), domain.RawItem{
		URL: "https://best-CASINO.example.com", Name: "harmless title",
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBlocklistMatchesName(t *testing.T) {
	f := NewBlocklistFilter([]string{"casino"})
	ok, err := f.IsSafe(context.Background(), domain.RawItem{
		URL: "https://example.com", Name: "My Favourite Casino",
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBlocklistAcceptsCleanItem(t *testing.T) {
	f := NewBlocklistFilter([]string{"casino", "malware"})
	ok, err := f.IsSafe(context.Background(), domain.RawItem{
		URL: "https://example.com/docs", Name: "Team docs",
	})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBlocklistIgnoresBlankTerms(t *testing.T) {
	f := NewBlocklistFilter([]string{"", "   ", "bad"})
	ok, _ := f.IsSafe(context.Background(), domain.RawItem{URL: "https://example.com"})
	assert.True(t, ok)

	ok, _ = f.IsSafe(context.Background(), domain.RawItem{URL: "https://bad.example.com"})
	assert.False(t, ok)
}

func TestAllowAll(t *testing.T) {
	ok, err := AllowAll{}.IsSafe(context.Background(), domain.RawItem{URL: "https://anything.example"})
	require.NoError(t, err)
	assert.True(t, ok)
}
