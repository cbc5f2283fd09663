package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicdesk/notification-service/internal/apperr"
	"github.com/civicdesk/notification-service/internal/models"
)

// MessageRepo is the durable chat-message store.
type MessageRepo struct {
	col *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) *MessageRepo {
	col := db.Collection("chat_messages")
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "complaint_id", Value: 1}, {Key: "created_at", Value: 1}}},
	})
	return &MessageRepo{col: col}
}

func (r *MessageRepo) Insert(ctx context.Context, m *models.ChatMessage) (*models.ChatMessage, error) {
	now := time.Now().UTC()
	m.ID = primitive.NewObjectID().Hex()
	m.CreatedAt = now
	m.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, m); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return m, nil
}

func (r *MessageRepo) Get(ctx context.Context, id string) (*models.ChatMessage, error) {
	var m models.ChatMessage
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFoundf("message %s", id)
		}
		return nil, fmt.Errorf("find message: %w", err)
	}
	return &m, nil
}

// ListConversation returns messages ascending by server-assigned creation
// time. A non-zero since supports incremental catch-up.
func (r *MessageRepo) ListConversation(ctx context.Context, conversationID string, since time.Time) ([]models.ChatMessage, error) {
	filter := bson.M{"conversation_id": conversationID}
	if !since.IsZero() {
		filter["created_at"] = bson.M{"$gt": since}
	}
	return r.list(ctx, filter)
}

func (r *MessageRepo) ListByComplaint(ctx context.Context, complaintID string) ([]models.ChatMessage, error) {
	return r.list(ctx, bson.M{"complaint_id": complaintID})
}

func (r *MessageRepo) list(ctx context.Context, filter bson.M) ([]models.ChatMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer cur.Close(ctx)
	var out []models.ChatMessage
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return out, nil
}

// Edit replaces the body. Only the original sender may edit.
func (r *MessageRepo) Edit(ctx context.Context, id, actorID, body string) (*models.ChatMessage, error) {
	m, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.SenderID != actorID {
		return nil, apperr.Unauthorizedf("message %s was not sent by %s", id, actorID)
	}
	update := bson.M{"$set": bson.M{
		"body":       body,
		"is_edited":  true,
		"updated_at": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.ChatMessage
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated); err != nil {
		return nil, fmt.Errorf("edit message: %w", err)
	}
	return &updated, nil
}

// DeleteFor soft-deletes the message for one viewer; the other party's view
// is preserved. Only conversation participants may delete.
func (r *MessageRepo) DeleteFor(ctx context.Context, id string, actor models.Actor) error {
	m, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if m.SenderID != actor.ID && m.ReceiverID != actor.ID {
		return apperr.Unauthorizedf("message %s does not involve %s", id, actor.ID)
	}
	update := bson.M{
		"$addToSet": bson.M{"deleted_by": actor},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	if _, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// MarkConversationRead flags every message addressed to the receiver in one
// conversation as read.
func (r *MessageRepo) MarkConversationRead(ctx context.Context, conversationID, receiverID string) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"conversation_id": conversationID, "receiver_id": receiverID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return 0, fmt.Errorf("mark conversation read: %w", err)
	}
	return res.ModifiedCount, nil
}
