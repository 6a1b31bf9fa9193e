package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobMarshalJSONIncludesProgress(t *testing.T) {
	job := Job{
		ID:             "job-1",
		SiteID:         "site-1",
		Mode:           JOB_MODE_BUILD_KNOWLEDGE,
		Status:         JOB_STATUS_PROCESSING,
		TotalItems:     8,
		ProcessedItems: 6,
		FailedItems:    FailedItems{},
	}

	raw, err := json.Marshal(job)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "job-1", decoded["id"])
	assert.InDelta(t, 0.75, decoded["progress"], 1e-9)
}

func TestJobProgressEmptyJob(t *testing.T) {
	var job Job
	assert.Zero(t, job.Progress())

	raw, err := json.Marshal(job)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Zero(t, decoded["progress"])
}
