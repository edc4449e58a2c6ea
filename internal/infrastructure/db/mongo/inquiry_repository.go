package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/washhub/carwash-web/internal/core/domain"
)

const collectionInquiries = "inquiries"

// InquiryRepository stores contact-page messages.
type InquiryRepository struct {
	col *mongo.Collection
}

func NewInquiryRepository(db *mongo.Database) *InquiryRepository {
	return &InquiryRepository{col: db.Collection(collectionInquiries)}
}

func (r *InquiryRepository) Create(ctx context.Context, inq *domain.Inquiry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"name":       inq.Name,
		"email":      inq.Email,
		"message":    inq.Message,
		"created_at": inq.CreatedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert inquiry: %w", err)
	}
	return nil
}

func (r *InquiryRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "created_at", Value: -1}}})
	return err
}
