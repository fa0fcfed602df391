package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// CloudWatchAPI is the subset of the CloudWatch client used here
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchRecorder sends pipeline metrics to CloudWatch. It implements
// ports.MetricsRecorder and is meant for Lambda, where nothing scrapes /metrics.
type CloudWatchRecorder struct {
	namespace string
	client    CloudWatchAPI
	timeout   time.Duration
	logger    *zap.Logger
}

// NewCloudWatchRecorder creates a new CloudWatch recorder
func NewCloudWatchRecorder(namespace string, client CloudWatchAPI, logger *zap.Logger) *CloudWatchRecorder {
	return &CloudWatchRecorder{
		namespace: namespace,
		client:    client,
		timeout:   2 * time.Second,
		logger:    logger,
	}
}

// ArchitectureCreated implements ports.MetricsRecorder
func (m *CloudWatchRecorder) ArchitectureCreated(nodes, edges int) {
	m.put(
		datum("ArchitecturesCreated", 1, types.StandardUnitCount, nil),
		datum("NodesGenerated", float64(nodes), types.StandardUnitCount, nil),
		datum("EdgesGenerated", float64(edges), types.StandardUnitCount, nil),
	)
}

// CodeGenerated implements ports.MetricsRecorder
func (m *CloudWatchRecorder) CodeGenerated(codeLength int) {
	m.put(
		datum("CodeGenerations", 1, types.StandardUnitCount, nil),
		datum("GeneratedCodeSize", float64(codeLength), types.StandardUnitBytes, nil),
	)
}

// ModelInvocation implements ports.MetricsRecorder
func (m *CloudWatchRecorder) ModelInvocation(stage string, status string, seconds float64) {
	dims := map[string]string{"Stage": stage, "Status": status}
	m.put(
		datum("ModelInvocations", 1, types.StandardUnitCount, dims),
		datum("ModelLatency", seconds*1000, types.StandardUnitMilliseconds, dims),
	)
}

// StoreOperation implements ports.MetricsRecorder
func (m *CloudWatchRecorder) StoreOperation(operation string, status string) {
	m.put(datum("StoreOperations", 1, types.StandardUnitCount,
		map[string]string{"Operation": operation, "Status": status}))
}

func datum(name string, value float64, unit types.StandardUnit, dimensions map[string]string) types.MetricDatum {
	var cwDimensions []types.Dimension
	for k, v := range dimensions {
		cwDimensions = append(cwDimensions, types.Dimension{
			Name:  aws.String(k),
			Value: aws.String(v),
		})
	}
	return types.MetricDatum{
		MetricName: aws.String(name),
		Dimensions: cwDimensions,
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(time.Now()),
	}
}

// put sends synchronously so a Lambda invocation does not freeze with
// metrics still in flight. Failures are logged and dropped.
func (m *CloudWatchRecorder) put(data ...types.MetricDatum) {
	if m.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	})
	if err != nil {
		m.logger.Warn("Failed to send metrics", zap.Error(err), zap.String("namespace", m.namespace))
	}
}
