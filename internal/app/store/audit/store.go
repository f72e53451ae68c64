// internal/app/store/audit/store.go
package audit

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAuth     = "auth"
	CategoryAdmin    = "admin"
	CategoryActivity = "activity"
)

// Auth event types
const (
	EventLoginSuccess = "login_success"
	EventLoginFailed  = "login_failed"
	EventLogout       = "logout"
)

// Admin event types
const (
	EventResourceUpdated = "resource_updated"
	EventResourceDeleted = "resource_deleted"
)

// Activity event types
const (
	EventReviewAdded = "review_added"
)

// ErrDisabled is returned by queries when no database is configured.
var ErrDisabled = errors.New("audit storage is not configured")

// Event represents an audit event.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`

	// Event classification
	Category  string `bson:"category" json:"category"`
	EventType string `bson:"event_type" json:"event_type"`

	// Who. Username is the session's login name; for failed logins it is
	// the name that was attempted.
	Username string `bson:"username,omitempty" json:"username,omitempty"`

	// What
	ResourceID *int `bson:"resource_id,omitempty" json:"resource_id,omitempty"`

	// Context
	IP        string `bson:"ip" json:"ip"`
	UserAgent string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`

	// Outcome
	Success       bool   `bson:"success" json:"success"`
	FailureReason string `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// QueryFilter defines filters for querying audit events.
type QueryFilter struct {
	Username  string
	Category  string
	EventType string
	Since     *time.Time
	Limit     int64
	Offset    int64
}

// Store manages audit event records. A Store built from a nil database is
// disabled: Log is a no-op and queries return ErrDisabled.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	if db == nil {
		return &Store{}
	}
	return &Store{c: db.Collection("audit_events")}
}

// Enabled reports whether events are persisted.
func (s *Store) Enabled() bool {
	return s != nil && s.c != nil
}

// EnsureIndexes creates necessary indexes for efficient querying.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	indexes := []mongo.IndexModel{
		// Most recent first
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		// Per user
		{
			Keys: bson.D{
				{Key: "username", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		// Per event type
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if !s.Enabled() {
		return nil
	}
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Query retrieves audit events matching the given filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limitOrDefault(filter.Limit)).
		SetSkip(filter.Offset)

	cursor, err := s.c.Find(ctx, buildQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := []Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Count returns the number of events matching the filter.
func (s *Store) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	if !s.Enabled() {
		return 0, ErrDisabled
	}
	return s.c.CountDocuments(ctx, buildQuery(filter))
}

// GetRecent retrieves the most recent audit events.
func (s *Store) GetRecent(ctx context.Context, limit int64) ([]Event, error) {
	return s.Query(ctx, QueryFilter{Limit: limit})
}

func buildQuery(filter QueryFilter) bson.M {
	query := bson.M{}
	if filter.Username != "" {
		query["username"] = filter.Username
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.EventType != "" {
		query["event_type"] = filter.EventType
	}
	if filter.Since != nil {
		query["timestamp"] = bson.M{"$gte": *filter.Since}
	}
	return query
}

func limitOrDefault(n int64) int64 {
	switch {
	case n <= 0:
		return 100
	case n > 500:
		return 500
	default:
		return n
	}
}
