package dynamodb

import (
	"context"
	"fmt"
	"sort"
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

// ParticipantRepository implements ports.ParticipantRepository using DynamoDB
type ParticipantRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewParticipantRepository creates a new ParticipantRepository
func NewParticipantRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *ParticipantRepository {
	return &ParticipantRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// participantItem represents the DynamoDB item structure for a participant
type participantItem struct {
	PK            string `dynamodbav:"PK"`
	SK            string `dynamodbav:"SK"`
	EntityType    string `dynamodbav:"EntityType"`
	ParticipantID string `dynamodbav:"ParticipantID"`
	SessionID     string `dynamodbav:"SessionID"`
	DisplayName   string `dynamodbav:"DisplayName"`
	IsModerator   bool   `dynamodbav:"IsModerator"`
	IsCompleted   bool   `dynamodbav:"IsCompleted"`
	JoinedAt      string `dynamodbav:"JoinedAt"`
	Version       int    `dynamodbav:"Version"`
}

func participantSK(participantID string) string {
	return fmt.Sprintf("PARTICIPANT#%s", participantID)
}

// Save persists the participant
func (r *ParticipantRepository) Save(ctx context.Context, participant *entities.Participant) error {
	item := participantItem{
		PK:            sessionPK(participant.SessionID().String()),
		SK:            participantSK(participant.ID().String()),
		EntityType:    "PARTICIPANT",
		ParticipantID: participant.ID().String(),
		SessionID:     participant.SessionID().String(),
		DisplayName:   participant.DisplayName(),
		IsModerator:   participant.IsModerator(),
		IsCompleted:   participant.IsCompleted(),
		JoinedAt:      participant.JoinedAt().Format(time.RFC3339Nano),
		Version:       participant.Version(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return errors.NewInternalError("failed to marshal participant").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		r.logger.Error("failed to save participant",
			zap.Error(err),
			zap.String("participant_id", participant.ID().String()))
		return errors.NewInternalError("failed to save participant").WithCause(err)
	}
	return nil
}

// GetByID retrieves one participant of a session
func (r *ParticipantRepository) GetByID(ctx context.Context, sessionID valueobjects.SessionID, id valueobjects.ParticipantID) (*entities.Participant, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: sessionPK(sessionID.String())},
			"SK": &types.AttributeValueMemberS{Value: participantSK(id.String())},
		},
	})
	if err != nil {
		return nil, errors.NewInternalError("failed to get participant").WithCause(err)
	}
	if out.Item == nil {
		return nil, errors.NewNotFoundError("participant")
	}

	var item participantItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, errors.NewInternalError("failed to unmarshal participant").WithCause(err)
	}
	return item.toEntity()
}

// ListBySession returns the roster ordered by join time
func (r *ParticipantRepository) ListBySession(ctx context.Context, sessionID valueobjects.SessionID) ([]*entities.Participant, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(sessionPK(sessionID.String()))).
		And(expression.Key("SK").BeginsWith("PARTICIPANT#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, errors.NewInternalError("failed to build roster query").WithCause(err)
	}

	result := make([]*entities.Participant, 0)
	var lastKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, errors.NewInternalError("failed to query roster").WithCause(err)
		}

		for _, raw := range out.Items {
			var item participantItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, errors.NewInternalError("failed to unmarshal participant").WithCause(err)
			}
			participant, err := item.toEntity()
			if err != nil {
				return nil, err
			}
			result = append(result, participant)
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		lastKey = out.LastEvaluatedKey
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].JoinedAt().Equal(result[j].JoinedAt()) {
			return result[i].JoinedAt().Before(result[j].JoinedAt())
		}
		return result[i].ID().String() < result[j].ID().String()
	})
	return result, nil
}

func (i participantItem) toEntity() (*entities.Participant, error) {
	participantID, err := valueobjects.NewParticipantIDFromString(i.ParticipantID)
	if err != nil {
		return nil, errors.NewInternalError("corrupt participant item").WithCause(err)
	}
	sessionID, err := valueobjects.NewSessionIDFromString(i.SessionID)
	if err != nil {
		return nil, errors.NewInternalError("corrupt participant item").WithCause(err)
	}
	joinedAt, err := time.Parse(time.RFC3339Nano, i.JoinedAt)
	if err != nil {
		return nil, errors.NewInternalError("corrupt participant item").WithCause(err)
	}

	return entities.ReconstructParticipant(participantID, sessionID, i.DisplayName, i.IsModerator, i.IsCompleted, joinedAt, i.Version), nil
}
