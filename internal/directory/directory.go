package directory

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/civicdesk/notification-service/internal/apperr"
	"github.com/civicdesk/notification-service/internal/models"
)

// Mongo resolves recipient ids against the three account collections.
// A tagged ref hits one collection; an untagged ref probes all of them and
// stops at the first match.
type Mongo struct {
	users  *mongo.Collection
	staff  *mongo.Collection
	admins *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		users:  db.Collection("users"),
		staff:  db.Collection("staff"),
		admins: db.Collection("admins"),
	}
}

type accountDoc struct {
	ID    primitive.ObjectID `bson:"_id"`
	Name  string             `bson:"name"`
	Email string             `bson:"email"`
	Phone string             `bson:"phone,omitempty"`
}

func (d *Mongo) collectionFor(kind models.RecipientKind) *mongo.Collection {
	switch kind {
	case models.KindUser:
		return d.users
	case models.KindStaff:
		return d.staff
	case models.KindAdmin:
		return d.admins
	}
	return nil
}

func (d *Mongo) Resolve(ctx context.Context, ref models.RecipientRef) (*models.Contact, error) {
	if ref.ID == "" {
		return nil, apperr.Validationf("empty recipient id")
	}
	if ref.Kind != "" {
		col := d.collectionFor(ref.Kind)
		if col == nil {
			return nil, apperr.Validationf("unknown recipient kind %q", ref.Kind)
		}
		return d.lookup(ctx, col, ref.Kind, ref.ID)
	}
	// Untagged id: probe every collection. Order is not significant as ids
	// are unique across collections in practice.
	probes := []struct {
		kind models.RecipientKind
		col  *mongo.Collection
	}{
		{models.KindUser, d.users},
		{models.KindStaff, d.staff},
		{models.KindAdmin, d.admins},
	}
	for _, p := range probes {
		c, err := d.lookup(ctx, p.col, p.kind, ref.ID)
		if err == nil {
			return c, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}
	return nil, apperr.NotFoundf("recipient %s", ref.ID)
}

func (d *Mongo) lookup(ctx context.Context, col *mongo.Collection, kind models.RecipientKind, id string) (*models.Contact, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// not an object id, cannot exist in these collections
		return nil, apperr.NotFoundf("recipient %s", id)
	}
	var doc accountDoc
	if err := col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFoundf("recipient %s", id)
		}
		return nil, fmt.Errorf("directory lookup: %w", err)
	}
	return &models.Contact{
		ID:    doc.ID.Hex(),
		Kind:  kind,
		Name:  doc.Name,
		Email: doc.Email,
		Phone: doc.Phone,
	}, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}
