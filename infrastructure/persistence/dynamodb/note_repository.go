package dynamodb

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"retro-backend/domain/config"
	"retro-backend/domain/core/entities"
	"retro-backend/domain/core/valueobjects"
	"retro-backend/pkg/errors"
)

// NoteRepository implements ports.NoteRepository using DynamoDB
type NoteRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewNoteRepository creates a new NoteRepository
func NewNoteRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *NoteRepository {
	return &NoteRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// noteItem represents the DynamoDB item structure for a note
type noteItem struct {
	PK         string  `dynamodbav:"PK"`
	SK         string  `dynamodbav:"SK"`
	EntityType string  `dynamodbav:"EntityType"`
	NoteID     string  `dynamodbav:"NoteID"`
	SessionID  string  `dynamodbav:"SessionID"`
	OwnerID    string  `dynamodbav:"OwnerID"`
	OwnerName  string  `dynamodbav:"OwnerName"`
	Category   string  `dynamodbav:"Category"`
	Text       string  `dynamodbav:"Text"`
	PositionX  float64 `dynamodbav:"PositionX"`
	PositionY  float64 `dynamodbav:"PositionY"`
	GroupID    string  `dynamodbav:"GroupID,omitempty"`
	CreatedAt  string  `dynamodbav:"CreatedAt"`
	UpdatedAt  string  `dynamodbav:"UpdatedAt"`
	Version    int     `dynamodbav:"Version"`
}

func noteSK(noteID string) string {
	return fmt.Sprintf("NOTE#%s", noteID)
}

// Save persists the note
func (r *NoteRepository) Save(ctx context.Context, note *entities.Note) error {
	item := noteItem{
		PK:         sessionPK(note.SessionID().String()),
		SK:         noteSK(note.ID().String()),
		EntityType: "NOTE",
		NoteID:     note.ID().String(),
		SessionID:  note.SessionID().String(),
		OwnerID:    note.OwnerID().String(),
		OwnerName:  note.OwnerName(),
		Category:   note.Category().String(),
		Text:       note.Text().String(),
		PositionX:  note.Position().X(),
		PositionY:  note.Position().Y(),
		GroupID:    note.GroupID(),
		CreatedAt:  note.CreatedAt().Format(time.RFC3339Nano),
		UpdatedAt:  note.UpdatedAt().Format(time.RFC3339Nano),
		Version:    note.Version(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return errors.NewInternalError("failed to marshal note").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		r.logger.Error("failed to save note",
			zap.Error(err),
			zap.String("note_id", note.ID().String()))
		return errors.NewInternalError("failed to save note").WithCause(err)
	}
	return nil
}

// GetByID retrieves one note of a session
func (r *NoteRepository) GetByID(ctx context.Context, sessionID valueobjects.SessionID, id valueobjects.NoteID) (*entities.Note, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: sessionPK(sessionID.String())},
			"SK": &types.AttributeValueMemberS{Value: noteSK(id.String())},
		},
	})
	if err != nil {
		return nil, errors.NewInternalError("failed to get note").WithCause(err)
	}
	if out.Item == nil {
		return nil, errors.NewNotFoundError("note")
	}

	var item noteItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, errors.NewInternalError("failed to unmarshal note").WithCause(err)
	}
	return item.toEntity()
}

// ListBySession returns every note of the session ordered by creation time
func (r *NoteRepository) ListBySession(ctx context.Context, sessionID valueobjects.SessionID) ([]*entities.Note, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(sessionPK(sessionID.String()))).
		And(expression.Key("SK").BeginsWith("NOTE#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, errors.NewInternalError("failed to build notes query").WithCause(err)
	}

	result := make([]*entities.Note, 0)
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
			return nil, errors.NewInternalError("failed to query notes").WithCause(err)
		}

		for _, raw := range out.Items {
			var item noteItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, errors.NewInternalError("failed to unmarshal note").WithCause(err)
			}
			note, err := item.toEntity()
			if err != nil {
				return nil, err
			}
			result = append(result, note)
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		lastKey = out.LastEvaluatedKey
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt().Equal(result[j].CreatedAt()) {
			return result[i].CreatedAt().Before(result[j].CreatedAt())
		}
		return result[i].ID().String() < result[j].ID().String()
	})
	return result, nil
}

// Delete removes the note. Deleting an absent note reports not found so
// callers surface the same error as a failed read.
func (r *NoteRepository) Delete(ctx context.Context, sessionID valueobjects.SessionID, id valueobjects.NoteID) error {
	cond := expression.AttributeExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return errors.NewInternalError("failed to build delete condition").WithCause(err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: sessionPK(sessionID.String())},
			"SK": &types.AttributeValueMemberS{Value: noteSK(id.String())},
		},
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if stderrors.As(err, &ccf) {
			return errors.NewNotFoundError("note")
		}
		return errors.NewInternalError("failed to delete note").WithCause(err)
	}
	return nil
}

func (i noteItem) toEntity() (*entities.Note, error) {
	noteID, err := valueobjects.NewNoteIDFromString(i.NoteID)
	if err != nil {
		return nil, errors.NewInternalError("corrupt note item").WithCause(err)
	}
	sessionID, err := valueobjects.NewSessionIDFromString(i.SessionID)
	if err != nil {
		return nil, errors.NewInternalError("corrupt note item").WithCause(err)
	}
	ownerID, err := valueobjects.NewParticipantIDFromString(i.OwnerID)
	if err != nil {
		return nil, errors.NewInternalError("corrupt note item").WithCause(err)
	}
	category, err := valueobjects.ParseCategory(i.Category)
	if err != nil {
		return nil, errors.NewInternalError("corrupt note item").WithCause(err)
	}
	// Stored text was validated on write; the ceiling here only needs to
	// admit what is already persisted.
	text, err := valueobjects.NewNoteTextWithConfig(i.Text, &config.DomainConfig{
		MaxNoteTextLength:    len(i.Text) + 1,
		MaxDisplayNameLength: config.DefaultDomainConfig().MaxDisplayNameLength,
		JoinCodeLength:       config.DefaultDomainConfig().JoinCodeLength,
	})
	if err != nil {
		return nil, errors.NewInternalError("corrupt note item").WithCause(err)
	}
	position, err := valueobjects.NewPosition(i.PositionX, i.PositionY)
	if err != nil {
		return nil, errors.NewInternalError("corrupt note item").WithCause(err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, i.CreatedAt)
	if err != nil {
		return nil, errors.NewInternalError("corrupt note item").WithCause(err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, i.UpdatedAt)
	if err != nil {
		return nil, errors.NewInternalError("corrupt note item").WithCause(err)
	}

	return entities.ReconstructNote(noteID, sessionID, ownerID, i.OwnerName, category, text, position, i.GroupID, createdAt, updatedAt, i.Version), nil
}
