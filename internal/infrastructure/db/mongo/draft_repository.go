package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicfix/mobile-gateway/internal/core/domain"
)

const draftCollection = "report_drafts"

// MongoDraftRepository persists in-progress complaint drafts. Every query is
// scoped by user_id so one citizen can never read or delete another's draft.
type MongoDraftRepository struct {
	coll *mongo.Collection
}

func NewDraftRepository(db *mongo.Database) *MongoDraftRepository {
	return &MongoDraftRepository{coll: db.Collection(draftCollection)}
}

func (r *MongoDraftRepository) Create(ctx context.Context, draft *domain.ReportDraft) error {
	if _, err := r.coll.InsertOne(ctx, draft); err != nil {
		return fmt.Errorf("insert draft: %w", err)
	}
	return nil
}

func (r *MongoDraftRepository) Update(ctx context.Context, draft *domain.ReportDraft) error {
	res, err := r.coll.ReplaceOne(ctx, ownedFilter(draft.ID, draft.UserID), draft)
	if err != nil {
		return fmt.Errorf("update draft: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrDraftNotFound
	}
	return nil
}

func (r *MongoDraftRepository) FindByID(ctx context.Context, id, userID string) (*domain.ReportDraft, error) {
	var draft domain.ReportDraft
	if err := r.coll.FindOne(ctx, ownedFilter(id, userID)).Decode(&draft); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDraftNotFound
		}
		return nil, fmt.Errorf("find draft: %w", err)
	}
	return &draft, nil
}

func (r *MongoDraftRepository) ListByUser(ctx context.Context, userID string) ([]domain.ReportDraft, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer cursor.Close(ctx)

	var drafts []domain.ReportDraft
	if err := cursor.All(ctx, &drafts); err != nil {
		return nil, fmt.Errorf("decode drafts: %w", err)
	}
	return drafts, nil
}

func (r *MongoDraftRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.coll.DeleteOne(ctx, ownedFilter(id, userID))
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrDraftNotFound
	}
	return nil
}

func ownedFilter(id, userID string) bson.M {
	return bson.M{"_id": id, "user_id": userID}
}
