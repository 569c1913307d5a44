package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorsAreLabelled(t *testing.T) {
	before := testutil.ToFloat64(UpstreamErrors.WithLabelValues("timeout"))
	UpstreamErrors.WithLabelValues("timeout").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(UpstreamErrors.WithLabelValues("timeout")))

	ChatRejections.WithLabelValues("blank_message").Inc()
	assert.GreaterOrEqual(t, testutil.CollectAndCount(ChatRejections), 1)
}
