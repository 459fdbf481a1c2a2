package model

import "time"

// Answer is the persisted record of one admitted submission.
type Answer struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	RoomCode       string    `json:"roomCode" bson:"roomCode"`
	PlayerID       string    `json:"playerId" bson:"playerId"`
	QuestionID     string    `json:"questionId" bson:"questionId"`
	QuestionIndex  int       `json:"questionIndex" bson:"questionIndex"`
	SelectedOption int       `json:"selectedOption" bson:"selectedOption"`
	Correct        bool      `json:"correct" bson:"correct"`
	AnsweredAt     time.Time `json:"answeredAt" bson:"answeredAt"`
}

// SubmitAnswerRequest is the player's answer payload.
type SubmitAnswerRequest struct {
	OptionIndex int `json:"optionIndex"`
}

// SubmitAnswerResponse reports the combined admitted-and-correct outcome.
type SubmitAnswerResponse struct {
	Correct bool `json:"correct"`
}
