package index

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillscout/skillscout/internal/skills"
)

func newLexical(t *testing.T, list []skills.Skill) *LexicalIndex {
	t.Helper()

	idx, err := NewLexicalIndex()
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	require.NoError(t, idx.Rebuild(context.Background(), list))
	return idx
}

func TestLexicalFieldWeighting(t *testing.T) {
	t.Parallel()

	idx := newLexical(t, []skills.Skill{
		{ID: "in-name", Name: "react toolkit", Description: "misc helpers"},
		{ID: "in-tags", Name: "frontend toolkit", Tags: []string{"react"}, Description: "misc helpers"},
		{ID: "in-desc", Name: "web toolkit", Description: "works with react"},
	})

	hits, err := idx.Search(context.Background(), "react", 10)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	// Name matches outscore tag matches, which outscore description
	// matches (3:2:1 field boosts).
	assert.Equal(t, "in-name", hits[0].ID)
	assert.Equal(t, "in-tags", hits[1].ID)
	assert.Equal(t, "in-desc", hits[2].ID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
	assert.Greater(t, hits[1].Score, hits[2].Score)
}

func TestLexicalEmptyQueryReturnsNothing(t *testing.T) {
	t.Parallel()

	idx := newLexical(t, []skills.Skill{{ID: "s", Name: "something"}})

	hits, err := idx.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestLexicalSpecialCharactersNeverError(t *testing.T) {
	t.Parallel()

	idx := newLexical(t, []skills.Skill{
		{ID: "s", Name: "formatter", Description: "formats code"},
	})

	ctx := context.Background()
	queries := []string{
		`"formatter"`,
		`formatter AND (code OR "ts")`,
		`form* -code +x [a] {b}`,
		`!@#$%^&*()`,
		`🎉🎉🎉`,
		`日本語のクエリ`,
		`12345 67890`,
		strings.Repeat("a", 1000),
	}

	for _, q := range queries {
		hits, err := idx.Search(ctx, q, 10)
		require.NoError(t, err, "query %q must not error", q)
		_ = hits // possibly empty; the contract is no failure
	}
}

func TestLexicalQuerySyntaxIsInert(t *testing.T) {
	t.Parallel()

	idx := newLexical(t, []skills.Skill{
		{ID: "plain", Name: "code helper"},
		{ID: "other", Name: "unrelated thing"},
	})

	// A boolean-looking query matches on its terms, not its operators:
	// "NOT" must not exclude anything.
	hits, err := idx.Search(context.Background(), "code NOT helper", 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "plain", hits[0].ID)
}

func TestLexicalRebuildReplacesContents(t *testing.T) {
	t.Parallel()

	idx := newLexical(t, []skills.Skill{{ID: "old", Name: "legacy skill"}})
	ctx := context.Background()

	require.NoError(t, idx.Rebuild(ctx, []skills.Skill{{ID: "new", Name: "fresh skill"}}))

	hits, err := idx.Search(ctx, "legacy", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = idx.Search(ctx, "fresh", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "new", hits[0].ID)

	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestLexicalSearchDuringRebuild(t *testing.T) {
	t.Parallel()

	list := []skills.Skill{
		{ID: "a", Name: "code formatter"},
		{ID: "b", Name: "code helper"},
	}
	idx := newLexical(t, list)
	ctx := context.Background()

	// Searches racing a stream of rebuilds must always run against a
	// live generation, never against an index a swap just closed.
	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				_, err := idx.Search(ctx, "code", 10)
				assert.NoError(t, err)
			}
		}()
	}

	for i := 0; i < 50; i++ {
		require.NoError(t, idx.Rebuild(ctx, list))
	}
	close(done)
	wg.Wait()
}

func TestLexicalLimitCapsResults(t *testing.T) {
	t.Parallel()

	list := make([]skills.Skill, 20)
	for i := range list {
		list[i] = skills.Skill{ID: string(rune('a' + i)), Name: "formatter"}
	}
	idx := newLexical(t, list)

	hits, err := idx.Search(context.Background(), "formatter", 5)
	require.NoError(t, err)
	assert.Len(t, hits, 5)
}
