package model

import "time"

// Player represents a participant in a room.
type Player struct {
	ID       string    `json:"id" bson:"_id,omitempty"`
	RoomCode string    `json:"roomCode" bson:"roomCode"`
	Nickname string    `json:"nickname" bson:"nickname"`
	Score    int       `json:"score" bson:"score"`
	JoinedAt time.Time `json:"joinedAt" bson:"joinedAt"`
}

// PlayerJoinResponse is returned when a player joins a room.
type PlayerJoinResponse struct {
	PlayerID string    `json:"playerId"`
	Token    string    `json:"token"`
	RoomMeta *RoomMeta `json:"roomMeta"`
}

// RankingEntry is one row of the live ranking.
type RankingEntry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
}
