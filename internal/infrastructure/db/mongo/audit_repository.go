package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/washhub/carwash-web/internal/core/domain"
	"github.com/washhub/carwash-web/internal/core/ports"
)

const collectionAudit = "audit_trail"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	col *mongo.Collection
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAudit)}
}

var _ ports.AuditRepository = (*AuditRepository)(nil)

type auditDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Kind       string             `bson:"kind"`
	Subject    string             `bson:"subject"`
	Actor      string             `bson:"actor"`
	From       string             `bson:"from,omitempty"`
	To         string             `bson:"to"`
	At         time.Time          `bson:"at"`
	RecordedAt time.Time          `bson:"recorded_at"`
}

// Insert appends a record to the audit_trail collection.
func (r *AuditRepository) Insert(ctx context.Context, rec *domain.AuditRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := auditDoc{
		Kind:       string(rec.Kind),
		Subject:    rec.Subject,
		Actor:      rec.Actor,
		From:       rec.From,
		To:         rec.To,
		At:         rec.At.UTC(),
		RecordedAt: time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// ListBySubject returns the records of one subject, oldest first.
func (r *AuditRepository) ListBySubject(ctx context.Context, kind domain.AuditKind, subject string, limit int) ([]*domain.AuditRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"kind": string(kind), "subject": subject}
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find audit records: %w", err)
	}
	defer cur.Close(ctx)

	var docs []auditDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode audit records: %w", err)
	}

	out := make([]*domain.AuditRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.AuditRecord{
			Kind:    domain.AuditKind(d.Kind),
			Subject: d.Subject,
			Actor:   d.Actor,
			From:    d.From,
			To:      d.To,
			At:      d.At,
		})
	}
	return out, nil
}

// EnsureIndexes creates the indexes used by ListBySubject.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "subject", Value: 1}, {Key: "at", Value: 1}}},
		{Keys: bson.D{{Key: "actor", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
