package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"retro-backend/domain/core/entities"
	"retro-backend/domain/core/valueobjects"
	"retro-backend/pkg/errors"
)

// SessionRepository implements ports.SessionRepository using DynamoDB
type SessionRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// sessionItem represents the DynamoDB item structure for a session
type sessionItem struct {
	PK             string `dynamodbav:"PK"`
	SK             string `dynamodbav:"SK"`
	GSI1PK         string `dynamodbav:"GSI1PK,omitempty"`
	GSI1SK         string `dynamodbav:"GSI1SK,omitempty"`
	EntityType     string `dynamodbav:"EntityType"`
	SessionID      string `dynamodbav:"SessionID"`
	JoinCode       string `dynamodbav:"JoinCode"`
	ModeratorID    string `dynamodbav:"ModeratorID"`
	Phase          string `dynamodbav:"Phase"`
	CreatedAt      string `dynamodbav:"CreatedAt"`
	PhaseChangedAt string `dynamodbav:"PhaseChangedAt"`
	Version        int    `dynamodbav:"Version"`
}

// Save persists the session. Finished sessions lose their GSI1 projection
// so their join code stops resolving.
func (r *SessionRepository) Save(ctx context.Context, session *entities.Session) error {
	item := sessionItem{
		PK:             sessionPK(session.ID().String()),
		SK:             "META",
		EntityType:     "SESSION",
		SessionID:      session.ID().String(),
		JoinCode:       session.JoinCode().String(),
		ModeratorID:    session.ModeratorID().String(),
		Phase:          session.Phase().String(),
		CreatedAt:      session.CreatedAt().Format(time.RFC3339Nano),
		PhaseChangedAt: session.PhaseChangedAt().Format(time.RFC3339Nano),
		Version:        session.Version(),
	}
	if !session.Phase().IsTerminal() {
		item.GSI1PK = fmt.Sprintf("JOINCODE#%s", session.JoinCode().String())
		item.GSI1SK = "SESSION"
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return errors.NewInternalError("failed to marshal session").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		r.logger.Error("failed to save session",
			zap.Error(err),
			zap.String("session_id", session.ID().String()))
		return errors.NewInternalError("failed to save session").WithCause(err)
	}
	return nil
}

// GetByID retrieves a session by its identifier
func (r *SessionRepository) GetByID(ctx context.Context, id valueobjects.SessionID) (*entities.Session, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: sessionPK(id.String())},
			"SK": &types.AttributeValueMemberS{Value: "META"},
		},
	})
	if err != nil {
		return nil, errors.NewInternalError("failed to get session").WithCause(err)
	}
	if out.Item == nil {
		return nil, errors.NewNotFoundError("session")
	}

	var item sessionItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, errors.NewInternalError("failed to unmarshal session").WithCause(err)
	}
	return item.toEntity()
}

// GetByJoinCode resolves an active join code through GSI1
func (r *SessionRepository) GetByJoinCode(ctx context.Context, code valueobjects.JoinCode) (*entities.Session, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(fmt.Sprintf("JOINCODE#%s", code.String())))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, errors.NewInternalError("failed to build join code query").WithCause(err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(joinCodeIndexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, errors.NewInternalError("failed to query join code").WithCause(err)
	}
	if len(out.Items) == 0 {
		return nil, errors.NewNotFoundError("session")
	}

	var item sessionItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, errors.NewInternalError("failed to unmarshal session").WithCause(err)
	}
	return item.toEntity()
}

func (i sessionItem) toEntity() (*entities.Session, error) {
	sessionID, err := valueobjects.NewSessionIDFromString(i.SessionID)
	if err != nil {
		return nil, errors.NewInternalError("corrupt session item").WithCause(err)
	}
	joinCode, err := valueobjects.ParseJoinCode(i.JoinCode)
	if err != nil {
		return nil, errors.NewInternalError("corrupt session item").WithCause(err)
	}
	moderatorID, err := valueobjects.NewParticipantIDFromString(i.ModeratorID)
	if err != nil {
		return nil, errors.NewInternalError("corrupt session item").WithCause(err)
	}
	phase, err := valueobjects.ParsePhase(i.Phase)
	if err != nil {
		return nil, errors.NewInternalError("corrupt session item").WithCause(err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, i.CreatedAt)
	if err != nil {
		return nil, errors.NewInternalError("corrupt session item").WithCause(err)
	}
	phaseChangedAt, err := time.Parse(time.RFC3339Nano, i.PhaseChangedAt)
	if err != nil {
		return nil, errors.NewInternalError("corrupt session item").WithCause(err)
	}

	return entities.ReconstructSession(sessionID, joinCode, moderatorID, phase, createdAt, phaseChangedAt, i.Version), nil
}
