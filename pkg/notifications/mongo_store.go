package notifications

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names used by MongoStore.
const (
	MongoNotificationsCollection = "notifications"
	MongoUsersCollection         = "users"
)

// MongoStore is the MongoDB Store. Users are read from the users
// collection, whose _id is the user id.
type MongoStore struct {
	notifications *mongo.Collection
	users         *mongo.Collection
	now           func() time.Time
}

// MongoOption configures a MongoStore.
type MongoOption func(*MongoStore)

// WithMongoClock overrides the time source.
func WithMongoClock(now func() time.Time) MongoOption {
	return func(s *MongoStore) { s.now = now }
}

func NewMongoStore(db *mongo.Database, opts ...MongoOption) *MongoStore {
	s := &MongoStore{
		notifications: db.Collection(MongoNotificationsCollection),
		users:         db.Collection(MongoUsersCollection),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureIndexes creates the index backing List and CountUnread.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.notifications.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
	})
	if err != nil {
		return storageError("Failed to create notification indexes", err)
	}
	return nil
}

type mongoNotification struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Title     string    `bson:"title"`
	Message   string    `bson:"message"`
	Type      string    `bson:"type"`
	Read      bool      `bson:"read"`
	Link      *string   `bson:"link"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d mongoNotification) notification() Notification {
	return Notification{
		ID:        d.ID,
		UserID:    d.UserID,
		Title:     d.Title,
		Message:   d.Message,
		Type:      Type(d.Type),
		Read:      d.Read,
		Link:      d.Link,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func byOwner(userID string) bson.D {
	return bson.D{{Key: "user_id", Value: userID}}
}

func byOwnerAndID(userID, id string) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "user_id", Value: userID}}
}

func (s *MongoStore) List(ctx context.Context, userID string) ([]Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(ListLimit)

	cur, err := s.notifications.Find(ctx, byOwner(userID), opts)
	if err != nil {
		return nil, storageError(msgList, err)
	}
	var docs []mongoNotification
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storageError(msgList, err)
	}

	out := make([]Notification, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.notification())
	}
	return out, nil
}

func (s *MongoStore) CountUnread(ctx context.Context, userID string) (int, error) {
	filter := append(byOwner(userID), bson.E{Key: "read", Value: false})
	n, err := s.notifications.CountDocuments(ctx, filter)
	if err != nil {
		return 0, storageError(msgCount, err)
	}
	return int(n), nil
}

func (s *MongoStore) MarkRead(ctx context.Context, userID, id string) error {
	if _, err := s.notifications.UpdateOne(ctx, byOwnerAndID(userID, id), s.setRead(true)); err != nil {
		return storageError(msgMarkRead, err)
	}
	return nil
}

func (s *MongoStore) MarkUnread(ctx context.Context, userID, id string) error {
	if _, err := s.notifications.UpdateOne(ctx, byOwnerAndID(userID, id), s.setRead(false)); err != nil {
		return storageError(msgMarkUnread, err)
	}
	return nil
}

func (s *MongoStore) MarkAllRead(ctx context.Context, userID string) error {
	filter := append(byOwner(userID), bson.E{Key: "read", Value: false})
	if _, err := s.notifications.UpdateMany(ctx, filter, s.setRead(true)); err != nil {
		return storageError(msgMarkAllRead, err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.notifications.DeleteOne(ctx, byOwnerAndID(userID, id)); err != nil {
		return storageError(msgDelete, err)
	}
	return nil
}

func (s *MongoStore) Insert(ctx context.Context, in NewNotification) (Notification, error) {
	out, err := s.InsertBulk(ctx, []NewNotification{in})
	if err != nil {
		return Notification{}, err
	}
	return out[0], nil
}

// InsertBulk rejects the whole batch with ErrUnknownUser when any owner is
// missing from the users collection.
func (s *MongoStore) InsertBulk(ctx context.Context, ins []NewNotification) ([]Notification, error) {
	if len(ins) == 0 {
		return []Notification{}, nil
	}
	if err := s.ensureOwners(ctx, ins); err != nil {
		return nil, err
	}

	// Mongo keeps milliseconds; truncate so the returned records match
	// what a later List reads back.
	now := s.now().UTC().Truncate(time.Millisecond)
	docs := make([]mongoNotification, len(ins))
	for i, in := range ins {
		docs[i] = mongoNotification{
			ID:        newID(),
			UserID:    in.UserID,
			Title:     in.Title,
			Message:   in.Message,
			Type:      string(in.Type.OrDefault()),
			Link:      in.Link,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	if _, err := s.notifications.InsertMany(ctx, docs); err != nil {
		return nil, storageError(msgInsert, err)
	}

	out := make([]Notification, len(docs))
	for i, d := range docs {
		out[i] = d.notification()
	}
	return out, nil
}

func (s *MongoStore) ensureOwners(ctx context.Context, ins []NewNotification) error {
	seen := make(map[string]struct{}, len(ins))
	owners := make([]string, 0, len(ins))
	for _, in := range ins {
		if _, ok := seen[in.UserID]; ok {
			continue
		}
		seen[in.UserID] = struct{}{}
		owners = append(owners, in.UserID)
	}

	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: owners}}}}
	n, err := s.users.CountDocuments(ctx, filter)
	if err != nil {
		return storageError(msgInsert, err)
	}
	if int(n) != len(owners) {
		return storageError(msgInsert, ErrUnknownUser)
	}
	return nil
}

// RemoveUser deletes a user and every notification they own, matching the
// ON DELETE CASCADE of the relational schema. The user document is removed
// first, so inserts racing the call fail with ErrUnknownUser.
func (s *MongoStore) RemoveUser(ctx context.Context, userID string) error {
	if _, err := s.users.DeleteOne(ctx, bson.D{{Key: "_id", Value: userID}}); err != nil {
		return storageError(msgRemoveUser, err)
	}
	if _, err := s.notifications.DeleteMany(ctx, byOwner(userID)); err != nil {
		return storageError(msgRemoveUser, err)
	}
	return nil
}

func (s *MongoStore) ListUserIDs(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.D{{Key: "_id", Value: 1}}).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cur, err := s.users.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, storageError(msgListUsers, err)
	}
	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storageError(msgListUsers, err)
	}

	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

func (s *MongoStore) setRead(read bool) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: "read", Value: read},
		{Key: "updated_at", Value: s.now().UTC()},
	}}}
}
