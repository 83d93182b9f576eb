package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUpdatedKeepsCreationTime(t *testing.T) {
	created := time.Date(2024, 1, 15, 14, 30, 0, 0, time.FixedZone("CST", -6*3600))
	p := New("draft", created)
	require.Equal(t, time.UTC, p.Metadata.CreatedAt.Location())

	later := created.Add(time.Hour)
	next := p.Updated("final", later)

	require.Equal(t, "final", next.Entity)
	require.True(t, next.Metadata.CreatedAt.Equal(created))
	require.True(t, next.Metadata.UpdatedAt.Equal(later))
	require.Equal(t, "draft", p.Entity)
}
