package model

import "time"

type RoomStatus string

const (
	RoomStatusLobby    RoomStatus = "LOBBY"
	RoomStatusPlaying  RoomStatus = "PLAYING"
	RoomStatusFinished RoomStatus = "FINISHED"
)

// Room is the persisted record of one game session, keyed by join code.
type Room struct {
	ID                   string     `json:"id" bson:"_id,omitempty"`
	Code                 string     `json:"code" bson:"code"`
	BlockID              string     `json:"blockId" bson:"blockId"`
	HostID               string     `json:"hostId" bson:"hostId"`
	Status               RoomStatus `json:"status" bson:"status"`
	CurrentQuestionIndex int        `json:"currentQuestionIndex" bson:"currentQuestionIndex"`
	TimeLimitSec         int        `json:"timeLimitSec" bson:"timeLimitSec"`
	QuestionIDs          []string   `json:"questionIds" bson:"questionIds"` // fixed question order for this game
	CreatedAt            time.Time  `json:"createdAt" bson:"createdAt"`
	StartedAt            *time.Time `json:"startedAt,omitempty" bson:"startedAt,omitempty"`
	FinishedAt           *time.Time `json:"finishedAt,omitempty" bson:"finishedAt,omitempty"`
}

// RoomMeta is the slim Redis view of a room, enough for join and status checks.
type RoomMeta struct {
	RoomID    string     `json:"roomId"`
	BlockID   string     `json:"blockId"`
	HostID    string     `json:"hostId"`
	Status    RoomStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}

// GameConfig is the host's setup form for a new game.
type GameConfig struct {
	BlockID             string   `json:"blockId"`
	TimeLimitSec        int      `json:"timeLimitSec"`
	RandomMode          bool     `json:"randomMode"`
	NumQuestions        int      `json:"numQuestions"`        // used when RandomMode
	SelectedQuestionIDs []string `json:"selectedQuestionIds"` // used otherwise
}
