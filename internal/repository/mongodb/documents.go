package mongodb

import (
	"fmt"
	"time"

	"eventboard-backend/internal/models"
	"eventboard-backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// userDoc mirrors the documents of the "users" collection.
type userDoc struct {
	ID    primitive.ObjectID   `bson:"_id"`
	Name  *string              `bson:"name"`
	Email *string              `bson:"email"`
	Age   *float64             `bson:"age"`
	Image bson.RawValue        `bson:"image"`
	Posts []primitive.ObjectID `bson:"posts"`
}

// eventDoc mirrors the documents of the "events" collection.
type eventDoc struct {
	ID           primitive.ObjectID   `bson:"_id"`
	EventName    *string              `bson:"eventName"`
	Creator      *primitive.ObjectID  `bson:"creator"`
	Participants []primitive.ObjectID `bson:"participants"`
	Description  *string              `bson:"description"`
	Location     *string              `bson:"location"`
	Image        bson.RawValue        `bson:"image"`
	Date         time.Time            `bson:"date"`
}

func (d *userDoc) toModel() (*models.User, error) {
	image, err := decodeImage(d.Image)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", d.ID.Hex(), err)
	}
	return &models.User{
		ID:    d.ID.Hex(),
		Name:  d.Name,
		Email: d.Email,
		Age:   d.Age,
		Image: image,
		Posts: hexIDs(d.Posts),
	}, nil
}

func (d *eventDoc) toModel() (*models.Event, error) {
	image, err := decodeImage(d.Image)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", d.ID.Hex(), err)
	}
	event := &models.Event{
		ID:           d.ID.Hex(),
		EventName:    d.EventName,
		Participants: hexIDs(d.Participants),
		Description:  d.Description,
		Location:     d.Location,
		Image:        image,
		Date:         d.Date,
	}
	if d.Creator != nil {
		creator := d.Creator.Hex()
		event.Creator = &creator
	}
	return event, nil
}

// decodeImage branches on the stored BSON shape: a string is an inline
// image, binary data or a subdocument carrying binary "data" is a legacy
// buffer.
func decodeImage(v bson.RawValue) (models.Image, error) {
	switch v.Type {
	case 0, bsontype.Null, bsontype.Undefined:
		return models.Image{}, nil
	case bsontype.String:
		return models.InlineImage(v.StringValue()), nil
	case bsontype.Binary:
		_, data := v.Binary()
		return models.LegacyBufferImage(data), nil
	case bsontype.EmbeddedDocument:
		data, err := v.Document().LookupErr("data")
		if err != nil {
			return models.Image{}, fmt.Errorf("legacy image has no data field: %w", err)
		}
		if data.Type != bsontype.Binary {
			return models.Image{}, fmt.Errorf("legacy image data has type %s", data.Type)
		}
		_, b := data.Binary()
		return models.LegacyBufferImage(b), nil
	default:
		return models.Image{}, fmt.Errorf("unsupported image type %s", v.Type)
	}
}

// encodeImage is the inverse of decodeImage.
func encodeImage(img models.Image) any {
	switch img.Kind() {
	case models.ImageInline:
		return img.Inline()
	case models.ImageLegacyBuffer:
		return bson.D{{Key: "data", Value: primitive.Binary{Subtype: 0x00, Data: img.Buffer()}}}
	default:
		return nil
	}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%q: %w", id, repository.ErrInvalidID)
	}
	return oid, nil
}

func parseIDs(ids []string) ([]primitive.ObjectID, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := parseID(id)
		if err != nil {
			return nil, err
		}
		oids = append(oids, oid)
	}
	return oids, nil
}

func parseOptionalID(id *string) (*primitive.ObjectID, error) {
	if id == nil {
		return nil, nil
	}
	oid, err := parseID(*id)
	if err != nil {
		return nil, err
	}
	return &oid, nil
}

func hexIDs(oids []primitive.ObjectID) []string {
	ids := make([]string, 0, len(oids))
	for _, oid := range oids {
		ids = append(ids, oid.Hex())
	}
	return ids
}
