package dynamodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"cloudmap-backend/application/ports"
	"cloudmap-backend/domain/architecture"
)

const (
	entityType = "ARCHITECTURE"
	sortKey    = "METADATA"

	// maxUpdateAttempts bounds re-reads when an unconditional update races
	maxUpdateAttempts = 5
)

// API is the subset of the DynamoDB client used by the store
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Compile-time interface checks
var (
	_ ports.ArchitectureStore = (*ArchitectureStore)(nil)
	_ ports.HealthChecker     = (*ArchitectureStore)(nil)
)

// ArchitectureStore persists records as single items in one table.
// Optimistic locking on Version makes every update atomic.
type ArchitectureStore struct {
	client    API
	tableName string
	logger    *zap.Logger
	now       func() time.Time
}

// NewArchitectureStore creates a DynamoDB-backed store
func NewArchitectureStore(client API, tableName string, logger *zap.Logger) *ArchitectureStore {
	return &ArchitectureStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
		now:       time.Now,
	}
}

// recordItem is the stored shape. The graph and metadata are JSON strings so
// open node data round-trips unchanged.
type recordItem struct {
	PK             string `dynamodbav:"PK"`
	SK             string `dynamodbav:"SK"`
	EntityType     string `dynamodbav:"EntityType"`
	ArchitectureID string `dynamodbav:"ArchitectureID"`
	Nodes          string `dynamodbav:"Nodes"`
	Edges          string `dynamodbav:"Edges"`
	Metadata       string `dynamodbav:"Metadata"`
	Version        int    `dynamodbav:"Version"`
	CreatedAt      string `dynamodbav:"CreatedAt"`
	UpdatedAt      string `dynamodbav:"UpdatedAt"`
}

func partitionKey(id string) string {
	return fmt.Sprintf("ARCH#%s", id)
}

func buildKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: partitionKey(id)},
		"SK": &types.AttributeValueMemberS{Value: sortKey},
	}
}

func toItem(r architecture.Record) (map[string]types.AttributeValue, error) {
	nodes, err := json.Marshal(nonNilNodes(r.Nodes))
	if err != nil {
		return nil, fmt.Errorf("failed to encode nodes: %w", err)
	}
	edges, err := json.Marshal(nonNilEdges(r.Edges))
	if err != nil {
		return nil, fmt.Errorf("failed to encode edges: %w", err)
	}
	metadata, err := json.Marshal(r.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}

	return attributevalue.MarshalMap(recordItem{
		PK:             partitionKey(r.ID),
		SK:             sortKey,
		EntityType:     entityType,
		ArchitectureID: r.ID,
		Nodes:          string(nodes),
		Edges:          string(edges),
		Metadata:       string(metadata),
		Version:        r.Version,
		CreatedAt:      r.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:      r.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
}

func parseItem(av map[string]types.AttributeValue) (*architecture.Record, error) {
	var it recordItem
	if err := attributevalue.UnmarshalMap(av, &it); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}

	r := &architecture.Record{
		ID:       it.ArchitectureID,
		Version:  it.Version,
		Nodes:    []architecture.Node{},
		Edges:    []architecture.Edge{},
		Metadata: architecture.Metadata{},
	}
	if err := json.Unmarshal([]byte(it.Nodes), &r.Nodes); err != nil {
		return nil, fmt.Errorf("failed to decode nodes: %w", err)
	}
	if err := json.Unmarshal([]byte(it.Edges), &r.Edges); err != nil {
		return nil, fmt.Errorf("failed to decode edges: %w", err)
	}
	if it.Metadata != "" && it.Metadata != "null" {
		if err := json.Unmarshal([]byte(it.Metadata), &r.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata: %w", err)
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, it.CreatedAt); err == nil {
		r.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, it.UpdatedAt); err == nil {
		r.UpdatedAt = t
	}
	return r, nil
}

func nonNilNodes(n []architecture.Node) []architecture.Node {
	if n == nil {
		return []architecture.Node{}
	}
	return n
}

func nonNilEdges(e []architecture.Edge) []architecture.Edge {
	if e == nil {
		return []architecture.Edge{}
	}
	return e
}

func isConditionFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// Create inserts a new record, failing if the id is taken
func (s *ArchitectureStore) Create(ctx context.Context, id string, record *architecture.Record) error {
	if record == nil || id == "" {
		return fmt.Errorf("invalid architecture record")
	}

	stored := record.Clone()
	stored.ID = id
	if stored.Version == 0 {
		stored.Version = 1
	}

	item, err := toItem(stored)
	if err != nil {
		return err
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeNotExists()).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(s.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionFailure(err) {
			return fmt.Errorf("%w: %s", architecture.ErrAlreadyExists, id)
		}
		return fmt.Errorf("failed to save architecture: %w", err)
	}

	s.logger.Debug("Architecture saved",
		zap.String("architectureID", id),
		zap.Int("version", stored.Version),
	)
	return nil
}

// Get retrieves a record by id
func (s *ArchitectureStore) Get(ctx context.Context, id string) (*architecture.Record, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            buildKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if result.Item == nil {
		return nil, fmt.Errorf("%w: %s", architecture.ErrNotFound, id)
	}
	return parseItem(result.Item)
}

// Update applies mutate and writes the result conditioned on the version it
// read. A lost race re-reads and re-applies, so concurrent calls are
// last-write-wins without losing atomicity.
func (s *ArchitectureStore) Update(ctx context.Context, id string, mutate architecture.Mutator) (*architecture.Record, error) {
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		current, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		next, err := s.put(ctx, *current, mutate)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, architecture.ErrVersionConflict) {
			return nil, err
		}

		s.logger.Debug("Architecture update raced, retrying",
			zap.String("architectureID", id),
			zap.Int("attempt", attempt),
		)
	}
	return nil, fmt.Errorf("%w: %s: too many concurrent updates", architecture.ErrVersionConflict, id)
}

// UpdateIfVersion applies mutate only if the stored version equals expected
func (s *ArchitectureStore) UpdateIfVersion(ctx context.Context, id string, expected int, mutate architecture.Mutator) (*architecture.Record, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Version != expected {
		return nil, fmt.Errorf("%w: %s at version %d, expected %d",
			architecture.ErrVersionConflict, id, current.Version, expected)
	}
	return s.put(ctx, *current, mutate)
}

func (s *ArchitectureStore) put(ctx context.Context, current architecture.Record, mutate architecture.Mutator) (*architecture.Record, error) {
	next := mutate(current.Clone())
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	next.Version = current.Version + 1
	next.UpdatedAt = s.now().UTC()

	item, err := toItem(next)
	if err != nil {
		return nil, err
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.Name("Version").Equal(expression.Value(current.Version))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(s.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if isConditionFailure(err) {
			return nil, fmt.Errorf("%w: %s changed since version %d",
				architecture.ErrVersionConflict, current.ID, current.Version)
		}
		return nil, fmt.Errorf("failed to update architecture: %w", err)
	}

	s.logger.Debug("Architecture updated",
		zap.String("architectureID", next.ID),
		zap.Int("version", next.Version),
	)
	return &next, nil
}

// Ping checks that the table is reachable
func (s *ArchitectureStore) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.tableName),
	})
	if err != nil {
		return fmt.Errorf("table %s unavailable: %w", s.tableName, err)
	}
	return nil
}
