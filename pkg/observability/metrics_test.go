package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCollector_RecordsPipelineMetrics(t *testing.T) {
	c := NewCollector("cloudmap")

	c.ArchitectureCreated(3, 2)
	c.CodeGenerated(1200)
	c.ModelInvocation("graph", "success", 1.5)
	c.ModelInvocation("code", "error", 0.2)
	c.StoreOperation("create", "success")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.ArchitecturesCreated))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.NodesGenerated))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.EdgesGenerated))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.CodeGenerations))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ModelInvocations.WithLabelValues("graph", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ModelInvocations.WithLabelValues("code", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.StoreOperations.WithLabelValues("create", "success")))
}

func TestCollector_HTTPMiddlewareUsesRoutePattern(t *testing.T) {
	c := NewCollector("cloudmap")
	r := chi.NewRouter()
	r.Use(c.HTTPMiddleware)
	r.Get("/architectures/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/metrics", c.Handler().ServeHTTP)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/architectures/abc", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/architectures/{id}", "404")))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "cloudmap_http_requests_total"))
}

type mockCloudWatch struct {
	mock.Mock
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	args := m.Called(ctx, params)
	return &cloudwatch.PutMetricDataOutput{}, args.Error(0)
}

func TestCloudWatchRecorder(t *testing.T) {
	t.Run("Should send model metrics with stage dimensions", func(t *testing.T) {
		client := new(mockCloudWatch)
		client.On("PutMetricData", mock.Anything, mock.MatchedBy(func(in *cloudwatch.PutMetricDataInput) bool {
			return *in.Namespace == "CloudMap/test" && len(in.MetricData) == 2 &&
				*in.MetricData[0].MetricName == "ModelInvocations" && len(in.MetricData[0].Dimensions) == 2
		})).Return(nil)
		recorder := NewCloudWatchRecorder("CloudMap/test", client, zap.NewNop())

		recorder.ModelInvocation("code", "success", 2)

		client.AssertExpectations(t)
	})

	t.Run("Should swallow send failures", func(t *testing.T) {
		client := new(mockCloudWatch)
		client.On("PutMetricData", mock.Anything, mock.Anything).Return(errors.New("throttled"))
		recorder := NewCloudWatchRecorder("CloudMap/test", client, zap.NewNop())

		assert.NotPanics(t, func() { recorder.StoreOperation("get", "success") })
		client.AssertNumberOfCalls(t, "PutMetricData", 1)
	})
}

func TestNewLogger_LevelIsAdjustable(t *testing.T) {
	level, err := NewLevel("warn")
	require.NoError(t, err)
	logger, err := NewLogger("development", level)
	require.NoError(t, err)
	defer logger.Sync()

	assert.False(t, logger.Core().Enabled(zap.InfoLevel))

	require.NoError(t, SetLevel(level, "debug"))
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	assert.Error(t, SetLevel(level, "loud"))
}

func TestKVLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := NewKVLogger(zap.New(core))

	logger.Warn("Publish failed", "architectureID", "a1", "error", errors.New("denied"), "dangling")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "a1", fields["architectureID"])
	assert.Equal(t, "denied", fields["error"])
	assert.NotContains(t, fields, "dangling")
}
