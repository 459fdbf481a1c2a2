package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"quizlive/internal/model"
)

type AnswerRepo interface {
	Create(ctx context.Context, answer *model.Answer) error
	ListByRoom(ctx context.Context, roomCode string) ([]*model.Answer, error)
	ListByRoomAndPlayer(ctx context.Context, roomCode, playerID string) ([]*model.Answer, error)
	DeleteByRoom(ctx context.Context, roomCode string) error
}

type answerRepo struct {
	collection *mongo.Collection
}

func NewAnswerRepo(db *mongo.Database) AnswerRepo {
	return &answerRepo{
		collection: db.Collection("answers"),
	}
}

func (r *answerRepo) Create(ctx context.Context, answer *model.Answer) error {
	if answer.ID == "" {
		answer.ID = primitive.NewObjectID().Hex()
	}
	if answer.AnsweredAt.IsZero() {
		answer.AnsweredAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, answer)
	return err
}

func (r *answerRepo) ListByRoom(ctx context.Context, roomCode string) ([]*model.Answer, error) {
	return r.list(ctx, bson.M{"roomCode": roomCode})
}

func (r *answerRepo) ListByRoomAndPlayer(ctx context.Context, roomCode, playerID string) ([]*model.Answer, error) {
	return r.list(ctx, bson.M{"roomCode": roomCode, "playerId": playerID})
}

func (r *answerRepo) list(ctx context.Context, filter bson.M) ([]*model.Answer, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var answers []*model.Answer
	if err := cursor.All(ctx, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *answerRepo) DeleteByRoom(ctx context.Context, roomCode string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"roomCode": roomCode})
	return err
}
