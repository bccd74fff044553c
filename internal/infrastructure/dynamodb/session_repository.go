package dynamodb

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsv2dynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsv2types "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	awsv2xray "github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/aws/aws-xray-sdk-go/xray"
	"penalty-console/internal/domain"
)

type api interface {
	PutItem(ctx context.Context, in *awsv2dynamodb.PutItemInput, opts ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *awsv2dynamodb.GetItemInput, opts ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, in *awsv2dynamodb.DeleteItemInput, opts ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, in *awsv2dynamodb.UpdateItemInput, opts ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.UpdateItemOutput, error)
}

type Client struct {
	db        api
	tableName string
}

func NewClient(ctx context.Context, region, tableName string) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	awsv2xray.AWSV2Instrumentor(&cfg.APIOptions)
	client := awsv2dynamodb.NewFromConfig(cfg)
	return &Client{db: client, tableName: tableName}, nil
}

func sessionPK(id string) string { return "SESSION#" + id }
func sessionSK() string          { return "META" }

func sessionKey(id string) map[string]awsv2types.AttributeValue {
	return map[string]awsv2types.AttributeValue{
		"PK": &awsv2types.AttributeValueMemberS{Value: sessionPK(id)},
		"SK": &awsv2types.AttributeValueMemberS{Value: sessionSK()},
	}
}

func isConditionalCheckFailure(err error) bool {
	var condErr *awsv2types.ConditionalCheckFailedException
	return errors.As(err, &condErr)
}

type sessionItem struct {
	PK          string   `dynamodbav:"PK"`
	SK          string   `dynamodbav:"SK"`
	EntityType  string   `dynamodbav:"EntityType"`
	ID          string   `dynamodbav:"ID"`
	Token       string   `dynamodbav:"Token"`
	Permissions []string `dynamodbav:"Permissions"`
	DisplayName string   `dynamodbav:"DisplayName"`
	CreatedAt   string   `dynamodbav:"CreatedAt"`
	ExpiresAt   string   `dynamodbav:"ExpiresAt"`
	// TTL is the table's time-to-live attribute, in epoch seconds.
	TTL int64 `dynamodbav:"TTL,omitempty"`
}

type SessionRepository struct{ client *Client }

func NewSessionRepository(client *Client) *SessionRepository {
	return &SessionRepository{client: client}
}

func (r *SessionRepository) Save(ctx context.Context, session domain.Session) error {
	if session.ID == "" {
		return domain.ErrInvalidInput
	}
	item := sessionItem{
		PK:          sessionPK(session.ID),
		SK:          sessionSK(),
		EntityType:  "SESSION",
		ID:          session.ID,
		Token:       session.Token,
		Permissions: session.Permissions,
		DisplayName: session.DisplayName,
		CreatedAt:   session.CreatedAt.Format(time.RFC3339),
		ExpiresAt:   session.ExpiresAt.Format(time.RFC3339),
	}
	if !session.ExpiresAt.IsZero() {
		item.TTL = session.ExpiresAt.Unix()
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return err
	}
	return xray.Capture(ctx, "DynamoDB.PutSession", func(ctx context.Context) error {
		_, err = r.client.db.PutItem(ctx, &awsv2dynamodb.PutItemInput{
			TableName: aws.String(r.client.tableName),
			Item:      av,
		})
		return err
	})
}

func (r *SessionRepository) Get(ctx context.Context, id string) (domain.Session, error) {
	var out *awsv2dynamodb.GetItemOutput
	err := xray.Capture(ctx, "DynamoDB.GetSession", func(ctx context.Context) error {
		var e error
		out, e = r.client.db.GetItem(ctx, &awsv2dynamodb.GetItemInput{
			TableName: aws.String(r.client.tableName),
			Key:       sessionKey(id),
		})
		return e
	})
	if err != nil {
		return domain.Session{}, err
	}
	if out.Item == nil {
		return domain.Session{}, domain.ErrNotFound
	}
	raw := sessionItem{}
	if err := attributevalue.UnmarshalMap(out.Item, &raw); err != nil {
		return domain.Session{}, err
	}
	createdAt, _ := time.Parse(time.RFC3339, raw.CreatedAt)
	expiresAt, _ := time.Parse(time.RFC3339, raw.ExpiresAt)
	permissions := raw.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	return domain.Session{
		ID:          raw.ID,
		Token:       raw.Token,
		Permissions: permissions,
		DisplayName: raw.DisplayName,
		CreatedAt:   createdAt,
		ExpiresAt:   expiresAt,
	}, nil
}

// UpdatePermissions replaces the stored permission tokens of an existing session.
func (r *SessionRepository) UpdatePermissions(ctx context.Context, id string, permissions []string) error {
	permissionsAV, err := attributevalue.Marshal(permissions)
	if err != nil {
		return err
	}
	return xray.Capture(ctx, "DynamoDB.UpdateSessionPermissions", func(ctx context.Context) error {
		_, err := r.client.db.UpdateItem(ctx, &awsv2dynamodb.UpdateItemInput{
			TableName:        aws.String(r.client.tableName),
			Key:              sessionKey(id),
			UpdateExpression: aws.String("SET Permissions = :p"),
			ExpressionAttributeValues: map[string]awsv2types.AttributeValue{
				":p": permissionsAV,
			},
			ConditionExpression: aws.String("attribute_exists(PK)"),
		})
		if isConditionalCheckFailure(err) {
			return domain.ErrNotFound
		}
		return err
	})
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return xray.Capture(ctx, "DynamoDB.DeleteSession", func(ctx context.Context) error {
		_, err := r.client.db.DeleteItem(ctx, &awsv2dynamodb.DeleteItemInput{
			TableName:           aws.String(r.client.tableName),
			Key:                 sessionKey(id),
			ConditionExpression: aws.String("attribute_exists(PK)"),
		})
		if isConditionalCheckFailure(err) {
			return domain.ErrNotFound
		}
		return err
	})
}
