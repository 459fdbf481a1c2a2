package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"quizlive/internal/cache"
	"quizlive/internal/model"
)

// In-memory fakes for the repo and cache interfaces. The persist
// continuation runs on its own goroutine, so everything here is
// mutex-guarded.

type fakeBlockRepo struct {
	mu     sync.Mutex
	blocks map[string]*model.Block
}

func newFakeBlockRepo() *fakeBlockRepo {
	return &fakeBlockRepo{blocks: make(map[string]*model.Block)}
}

func (r *fakeBlockRepo) Create(ctx context.Context, block *model.Block) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if block.ID == "" {
		block.ID = fmt.Sprintf("block-%d", len(r.blocks)+1)
	}
	cp := *block
	r.blocks[block.ID] = &cp
	return nil
}

func (r *fakeBlockRepo) GetByID(ctx context.Context, id string) (*model.Block, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.blocks[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBlockRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Block, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Block
	for _, b := range r.blocks {
		if b.OwnerID == ownerID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeBlockRepo) Update(ctx context.Context, block *model.Block) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *block
	r.blocks[block.ID] = &cp
	return nil
}

func (r *fakeBlockRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.blocks, id)
	return nil
}

type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]*model.Room
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[string]*model.Room)}
}

func (r *fakeRoomRepo) Create(ctx context.Context, room *model.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room.ID == "" {
		room.ID = fmt.Sprintf("room-%d", len(r.rooms)+1)
	}
	cp := *room
	r.rooms[room.Code] = &cp
	return nil
}

func (r *fakeRoomRepo) GetByCode(ctx context.Context, code string) (*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[code]
	if !ok {
		return nil, nil
	}
	cp := *room
	return &cp, nil
}

func (r *fakeRoomRepo) Update(ctx context.Context, room *model.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *room
	r.rooms[room.Code] = &cp
	return nil
}

func (r *fakeRoomRepo) Delete(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, code)
	return nil
}

type fakePlayerRepo struct {
	mu      sync.Mutex
	players map[string]*model.Player
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: make(map[string]*model.Player)}
}

func (r *fakePlayerRepo) Create(ctx context.Context, player *model.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *player
	r.players[player.ID] = &cp
	return nil
}

func (r *fakePlayerRepo) GetByID(ctx context.Context, id string) (*model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePlayerRepo) ListByRoom(ctx context.Context, roomCode string) ([]*model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Player
	for _, p := range r.players {
		if p.RoomCode == roomCode {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) IncrementScore(ctx context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[id]; ok {
		p.Score += delta
	}
	return nil
}

func (r *fakePlayerRepo) DeleteByRoom(ctx context.Context, roomCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.players {
		if p.RoomCode == roomCode {
			delete(r.players, id)
		}
	}
	return nil
}

type fakeAnswerRepo struct {
	mu      sync.Mutex
	answers []*model.Answer
}

func newFakeAnswerRepo() *fakeAnswerRepo {
	return &fakeAnswerRepo{}
}

func (r *fakeAnswerRepo) Create(ctx context.Context, answer *model.Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *answer
	r.answers = append(r.answers, &cp)
	return nil
}

func (r *fakeAnswerRepo) ListByRoom(ctx context.Context, roomCode string) ([]*model.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Answer
	for _, a := range r.answers {
		if a.RoomCode == roomCode {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAnswerRepo) ListByRoomAndPlayer(ctx context.Context, roomCode, playerID string) ([]*model.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Answer
	for _, a := range r.answers {
		if a.RoomCode == roomCode && a.PlayerID == playerID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAnswerRepo) DeleteByRoom(ctx context.Context, roomCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*model.Answer
	for _, a := range r.answers {
		if a.RoomCode != roomCode {
			kept = append(kept, a)
		}
	}
	r.answers = kept
	return nil
}

func (r *fakeAnswerRepo) count(roomCode string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.answers {
		if a.RoomCode == roomCode {
			n++
		}
	}
	return n
}

type fakeRoomCache struct {
	mu    sync.Mutex
	metas map[string]*model.RoomMeta
}

func newFakeRoomCache() *fakeRoomCache {
	return &fakeRoomCache{metas: make(map[string]*model.RoomMeta)}
}

func (c *fakeRoomCache) SetMeta(ctx context.Context, code string, meta *model.RoomMeta) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *meta
	c.metas[code] = &cp
	return nil
}

func (c *fakeRoomCache) GetMeta(ctx context.Context, code string) (*model.RoomMeta, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.metas[code]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (c *fakeRoomCache) SetStatus(ctx context.Context, code string, status model.RoomStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.metas[code]
	if !ok {
		return fmt.Errorf("room %s not found", code)
	}
	m.Status = status
	return nil
}

func (c *fakeRoomCache) Delete(ctx context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.metas, code)
	return nil
}

func (c *fakeRoomCache) Exists(ctx context.Context, code string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.metas[code]
	return ok, nil
}

type fakeLeaderboard struct {
	mu     sync.Mutex
	scores map[string]map[string]int // roomCode -> playerID -> score
}

func newFakeLeaderboard() *fakeLeaderboard {
	return &fakeLeaderboard{scores: make(map[string]map[string]int)}
}

func (l *fakeLeaderboard) UpdateScore(ctx context.Context, roomCode, playerID string, score int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.scores[roomCode] == nil {
		l.scores[roomCode] = make(map[string]int)
	}
	l.scores[roomCode][playerID] = score
	return nil
}

func (l *fakeLeaderboard) GetTop(ctx context.Context, roomCode string, limit int) ([]cache.LeaderboardEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var entries []cache.LeaderboardEntry
	for playerID, score := range l.scores[roomCode] {
		entries = append(entries, cache.LeaderboardEntry{PlayerID: playerID, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (l *fakeLeaderboard) GetRank(ctx context.Context, roomCode, playerID string) (int64, error) {
	entries, _ := l.GetTop(ctx, roomCode, 0)
	for _, e := range entries {
		if e.PlayerID == playerID {
			return int64(e.Rank), nil
		}
	}
	return -1, nil
}

func (l *fakeLeaderboard) has(roomCode string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.scores[roomCode]
	return ok
}

func (l *fakeLeaderboard) Delete(ctx context.Context, roomCode string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.scores, roomCode)
	return nil
}

func (l *fakeLeaderboard) score(roomCode, playerID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.scores[roomCode][playerID]
}

type broadcastEvent struct {
	roomCode string
	playerID string
	msgType  string
	toHost   bool
}

type fakeBroadcaster struct {
	mu           sync.Mutex
	events       []broadcastEvent
	disconnected []string
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{}
}

func (b *fakeBroadcaster) BroadcastToHost(roomCode string, msgType string, payload interface{}) {
	b.record(broadcastEvent{roomCode: roomCode, msgType: msgType, toHost: true})
}

func (b *fakeBroadcaster) BroadcastToPlayer(roomCode, playerID string, msgType string, payload interface{}) {
	b.record(broadcastEvent{roomCode: roomCode, playerID: playerID, msgType: msgType})
}

func (b *fakeBroadcaster) BroadcastToAllPlayers(roomCode string, msgType string, payload interface{}) {
	b.record(broadcastEvent{roomCode: roomCode, msgType: msgType})
}

func (b *fakeBroadcaster) DisconnectRoom(roomCode string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disconnected = append(b.disconnected, roomCode)
}

func (b *fakeBroadcaster) record(ev broadcastEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

func (b *fakeBroadcaster) sawType(msgType string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ev := range b.events {
		if ev.msgType == msgType {
			return true
		}
	}
	return false
}

func (b *fakeBroadcaster) sawPlayerType(playerID, msgType string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ev := range b.events {
		if ev.playerID == playerID && ev.msgType == msgType {
			return true
		}
	}
	return false
}

func (b *fakeBroadcaster) didDisconnect(roomCode string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, code := range b.disconnected {
		if code == roomCode {
			return true
		}
	}
	return false
}
