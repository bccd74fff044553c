package dynamodb

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsv2dynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsv2types "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"penalty-console/internal/domain"
)

type fakeTable struct {
	mu    sync.Mutex
	items map[string]map[string]awsv2types.AttributeValue
	table string
}

func newFakeTable() *fakeTable {
	return &fakeTable{items: map[string]map[string]awsv2types.AttributeValue{}}
}

func keyOf(key map[string]awsv2types.AttributeValue) string {
	pk := key["PK"].(*awsv2types.AttributeValueMemberS).Value
	sk := key["SK"].(*awsv2types.AttributeValueMemberS).Value
	return pk + "|" + sk
}

func (f *fakeTable) PutItem(_ context.Context, in *awsv2dynamodb.PutItemInput, _ ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.table = aws.ToString(in.TableName)
	f.items[keyOf(in.Item)] = in.Item
	return &awsv2dynamodb.PutItemOutput{}, nil
}

func (f *fakeTable) GetItem(_ context.Context, in *awsv2dynamodb.GetItemInput, _ ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &awsv2dynamodb.GetItemOutput{Item: f.items[keyOf(in.Key)]}, nil
}

func (f *fakeTable) DeleteItem(_ context.Context, in *awsv2dynamodb.DeleteItemInput, _ ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := keyOf(in.Key)
	if _, ok := f.items[k]; !ok {
		return nil, &awsv2types.ConditionalCheckFailedException{}
	}
	delete(f.items, k)
	return &awsv2dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeTable) UpdateItem(_ context.Context, in *awsv2dynamodb.UpdateItemInput, _ ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := keyOf(in.Key)
	item, ok := f.items[k]
	if !ok {
		return nil, &awsv2types.ConditionalCheckFailedException{}
	}
	item["Permissions"] = in.ExpressionAttributeValues[":p"]
	return &awsv2dynamodb.UpdateItemOutput{}, nil
}

func tracedContext(t *testing.T) context.Context {
	ctx, seg := xray.BeginSegment(context.Background(), "test")
	t.Cleanup(func() { seg.Close(nil) })
	return ctx
}

func TestSessionRepositoryRoundTrip(t *testing.T) {
	table := newFakeTable()
	repo := NewSessionRepository(&Client{db: table, tableName: "console-sessions"})
	ctx := tracedContext(t)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	session := domain.Session{
		ID:          "abc",
		Token:       "tok",
		Permissions: []string{domain.PermDoctorView},
		DisplayName: "Admin",
		CreatedAt:   created,
		ExpiresAt:   created.Add(time.Hour),
	}

	require.NoError(t, repo.Save(ctx, session))
	assert.Equal(t, "console-sessions", table.table)
	stored := table.items["SESSION#abc|META"]
	require.NotNil(t, stored)
	assert.Equal(t, &awsv2types.AttributeValueMemberN{Value: "1714568400"}, stored["TTL"])

	got, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, session, got)
}

func TestSessionRepositoryMissing(t *testing.T) {
	repo := NewSessionRepository(&Client{db: newFakeTable(), tableName: "t"})
	ctx := tracedContext(t)

	_, err := repo.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "nope"), domain.ErrNotFound)
	assert.ErrorIs(t, repo.UpdatePermissions(ctx, "nope", nil), domain.ErrNotFound)
	assert.ErrorIs(t, repo.Save(ctx, domain.Session{}), domain.ErrInvalidInput)
}

func TestSessionRepositoryUpdatePermissionsAndDelete(t *testing.T) {
	repo := NewSessionRepository(&Client{db: newFakeTable(), tableName: "t"})
	ctx := tracedContext(t)
	require.NoError(t, repo.Save(ctx, domain.Session{ID: "s", Permissions: []string{"a"}}))

	require.NoError(t, repo.UpdatePermissions(ctx, "s", []string{"b", "c"}))
	got, err := repo.Get(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, got.Permissions)

	require.NoError(t, repo.Delete(ctx, "s"))
	_, err = repo.Get(ctx, "s")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
