package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"quizlive/internal/model"
)

type BlockRepo interface {
	Create(ctx context.Context, block *model.Block) error
	GetByID(ctx context.Context, id string) (*model.Block, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Block, error)
	Update(ctx context.Context, block *model.Block) error
	Delete(ctx context.Context, id string) error
}

type blockRepo struct {
	collection *mongo.Collection
}

func NewBlockRepo(db *mongo.Database) BlockRepo {
	return &blockRepo{
		collection: db.Collection("blocks"),
	}
}

func (r *blockRepo) Create(ctx context.Context, block *model.Block) error {
	now := time.Now()
	if block.ID == "" {
		block.ID = primitive.NewObjectID().Hex()
	}
	if block.CreatedAt.IsZero() {
		block.CreatedAt = now
	}
	block.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, block)
	return err
}

func (r *blockRepo) GetByID(ctx context.Context, id string) (*model.Block, error) {
	var block model.Block
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&block)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &block, nil
}

func (r *blockRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Block, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"ownerId": ownerID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var blocks []*model.Block
	if err := cursor.All(ctx, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *blockRepo) Update(ctx context.Context, block *model.Block) error {
	block.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": block.ID}, block)
	return err
}

func (r *blockRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
