package reconcile

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRender_EmptyScope(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, &BatchResult{Job: "category-tree", Notice: "no descendants found for Shoes", Failures: []Failure{}})

	out := buf.String()
	assert.Contains(t, out, "no descendants found for Shoes")
	assert.Contains(t, out, "Entities Found:       0")
	assert.NotContains(t, out, "Could not regenerate")
}

func TestRender_WithFailures(t *testing.T) {
	start := time.Now()
	r := &BatchResult{
		Job:                "product-url",
		EntitiesFound:      3,
		RecordsDeleted:     4,
		RecordsRegenerated: 2,
		StartedAt:          start,
		FinishedAt:         start.Add(1500 * time.Millisecond),
		Failures: []Failure{{
			EntityID:       5,
			EntityLabel:    "SKU-5 (5)",
			StoreID:        1,
			Message:        "url collision",
			AttemptedPaths: []string{"shoe.html", "men/shoe.html"},
		}},
	}

	var buf bytes.Buffer
	Render(&buf, r)
	out := buf.String()

	assert.Contains(t, out, "Records Regenerated:  2")
	assert.Contains(t, out, "Execution Time:       1.5s")
	assert.Contains(t, out, "Could not regenerate the urls for these 1 entities:")
	assert.Contains(t, out, "- Store ID 1, SKU-5 (5): url collision")
	assert.Contains(t, out, "Generated URLs: shoe.html, men/shoe.html")
}

func TestRender_DryRun(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, &BatchResult{Job: "category-tree", EntitiesFound: 2, DryRun: true})
	assert.Contains(t, buf.String(), "no changes were made")
	assert.NotContains(t, buf.String(), "Records Deleted")
}

func TestRender_Cancelled(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, &BatchResult{Job: "product-url", EntitiesFound: 4, Cancelled: true})
	assert.Contains(t, buf.String(), "Cancelled:            no changes were made")
	assert.NotContains(t, buf.String(), "Records Deleted")
}

func TestLogSummary(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := zap.New(core)

	LogSummary(l, &BatchResult{EntitiesFound: 1})
	LogSummary(l, &BatchResult{EntitiesFound: 1, Failures: []Failure{{EntityID: 1}}})

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zap.InfoLevel, logs.All()[0].Level)
	assert.Equal(t, zap.WarnLevel, logs.All()[1].Level)
}

func TestMarshalReport(t *testing.T) {
	data, err := MarshalReport(&BatchResult{RunID: "r1", EntitiesFound: 3, Failures: []Failure{}})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "r1", decoded["run_id"])
	assert.Equal(t, float64(3), decoded["entities_found"])
	assert.Equal(t, []any{}, decoded["failures"])
}
