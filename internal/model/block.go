package model

import "time"

// Block is a host-owned set of questions a game can be created from.
type Block struct {
	ID          string     `json:"id" bson:"_id,omitempty"`
	Name        string     `json:"name" bson:"name"`
	Description string     `json:"description" bson:"description"`
	OwnerID     string     `json:"ownerId" bson:"ownerId"`
	Questions   []Question `json:"questions" bson:"questions"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Question is a single multiple-choice question inside a block.
type Question struct {
	ID                 string   `json:"id" bson:"id"`
	Statement          string   `json:"statement" bson:"statement"`
	Options            []string `json:"options" bson:"options"`
	CorrectOptionIndex int      `json:"correctOptionIndex" bson:"correctOptionIndex"`
}

// QuestionByID returns the block question with the given id, or nil.
func (b *Block) QuestionByID(id string) *Question {
	for i := range b.Questions {
		if b.Questions[i].ID == id {
			return &b.Questions[i]
		}
	}
	return nil
}

// PublicQuestion is a question as shown to players: no correct index.
type PublicQuestion struct {
	Index     int      `json:"index"`
	Statement string   `json:"statement"`
	Options   []string `json:"options"`
}

func (q *Question) Public(index int) *PublicQuestion {
	return &PublicQuestion{
		Index:     index,
		Statement: q.Statement,
		Options:   q.Options,
	}
}
