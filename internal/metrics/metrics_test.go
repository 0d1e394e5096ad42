package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOperation(t *testing.T) {
	c := NewCollector()

	c.RecordOperation("put_object", 10*time.Millisecond, nil)
	c.RecordOperation("put_object", 10*time.Millisecond, fmt.Errorf("boom"))
	c.RecordOperation("get_object", time.Millisecond, nil)

	assert.Equal(t, float64(1), testutil.ToFloat64(
		c.operations.WithLabelValues("put_object", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		c.operations.WithLabelValues("put_object", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		c.operations.WithLabelValues("get_object", "success")))
}

func TestRecordPollAttemptAndDeleted(t *testing.T) {
	c := NewCollector()

	c.RecordPollAttempt(false)
	c.RecordPollAttempt(false)
	c.RecordPollAttempt(true)
	c.RecordDeleted(2500)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.pollAttempts.WithLabelValues("pending")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.pollAttempts.WithLabelValues("found")))
	assert.Equal(t, float64(2500), testutil.ToFloat64(c.deleted))
}

func TestHandlerServesRegistry(t *testing.T) {
	c := NewCollector()
	c.RecordDeleted(1)

	families, err := c.Registry().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "harmonix_erase_objects_deleted_total")
	assert.NotNil(t, c.Handler())
}
