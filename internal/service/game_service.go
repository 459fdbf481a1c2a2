package service

import (
	"context"
	"crypto/rand"
	"fmt"
	mrand "math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"quizlive/config"
	"quizlive/internal/cache"
	"quizlive/internal/engine"
	"quizlive/internal/model"
	"quizlive/internal/repository"
)

// GameService is the game flow controller: it owns room lifecycle
// (lobby -> playing -> finished) and question-index progression, and drives
// the live engine's answer windows. The engine owns everything inside one
// window; this service decides when windows open and close.
type GameService struct {
	cfg         *config.Config
	roomRepo    repository.RoomRepo
	blockRepo   repository.BlockRepo
	playerRepo  repository.PlayerRepo
	answerRepo  repository.AnswerRepo
	roomCache   cache.RoomCache
	leaderboard cache.LeaderboardCache
	engine      *engine.Engine
	authSvc     *AuthService
	broadcaster Broadcaster
}

// NewGameService creates a new game service
func NewGameService(
	cfg *config.Config,
	roomRepo repository.RoomRepo,
	blockRepo repository.BlockRepo,
	playerRepo repository.PlayerRepo,
	answerRepo repository.AnswerRepo,
	roomCache cache.RoomCache,
	leaderboard cache.LeaderboardCache,
	eng *engine.Engine,
	authSvc *AuthService,
) *GameService {
	return &GameService{
		cfg:         cfg,
		roomRepo:    roomRepo,
		blockRepo:   blockRepo,
		playerRepo:  playerRepo,
		answerRepo:  answerRepo,
		roomCache:   roomCache,
		leaderboard: leaderboard,
		engine:      eng,
		authSvc:     authSvc,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *GameService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CreateGame creates a room from a block with the host's configuration and
// registers its live state with the engine.
func (s *GameService) CreateGame(ctx context.Context, hostID string, cfg model.GameConfig) (*model.Room, error) {
	block, err := s.blockRepo.GetByID(ctx, cfg.BlockID)
	if err != nil {
		return nil, fmt.Errorf("failed to get block: %w", err)
	}
	if block == nil {
		return nil, fmt.Errorf("block not found")
	}
	if block.OwnerID != hostID {
		return nil, fmt.Errorf("unauthorized: not block owner")
	}

	questionIDs, err := selectQuestions(block, cfg)
	if err != nil {
		return nil, err
	}

	code, err := s.generateJoinCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate join code: %w", err)
	}

	timeLimit := cfg.TimeLimitSec
	if timeLimit <= 0 {
		timeLimit = s.cfg.DefaultTimeLimitSec
	}
	if timeLimit <= 0 {
		return nil, fmt.Errorf("time limit must be positive")
	}

	room := &model.Room{
		Code:         code,
		BlockID:      block.ID,
		HostID:       hostID,
		Status:       model.RoomStatusLobby,
		TimeLimitSec: timeLimit,
		QuestionIDs:  questionIDs,
		CreatedAt:    time.Now(),
	}
	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	meta := &model.RoomMeta{
		RoomID:    room.ID,
		BlockID:   block.ID,
		HostID:    hostID,
		Status:    model.RoomStatusLobby,
		CreatedAt: room.CreatedAt,
	}
	if err := s.roomCache.SetMeta(ctx, code, meta); err != nil {
		return nil, fmt.Errorf("failed to cache room: %w", err)
	}

	s.engine.CreateRoom(code, room.ID)
	return room, nil
}

// Join adds a player to a lobby. Nicknames are unique per room,
// case-insensitively.
func (s *GameService) Join(ctx context.Context, code, nickname string) (*model.PlayerJoinResponse, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, fmt.Errorf("nickname is required")
	}

	meta, err := s.roomCache.GetMeta(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if meta == nil {
		return nil, fmt.Errorf("room not found")
	}
	if meta.Status != model.RoomStatusLobby {
		return nil, fmt.Errorf("room is not accepting players (status: %s)", meta.Status)
	}

	players, err := s.playerRepo.ListByRoom(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	for _, p := range players {
		if strings.EqualFold(p.Nickname, nickname) {
			return nil, fmt.Errorf("nickname already taken")
		}
	}

	playerID := "p_" + uuid.New().String()[:8]
	token, err := s.authSvc.GeneratePlayerToken(code, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	player := &model.Player{
		ID:       playerID,
		RoomCode: code,
		Nickname: nickname,
		Score:    0,
		JoinedAt: time.Now(),
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to save player: %w", err)
	}
	if err := s.leaderboard.UpdateScore(ctx, code, playerID, 0); err != nil {
		return nil, fmt.Errorf("failed to init leaderboard: %w", err)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToHost(code, "player_joined", map[string]interface{}{
			"playerId": playerID,
			"nickname": nickname,
		})
	}

	return &model.PlayerJoinResponse{
		PlayerID: playerID,
		Token:    token,
		RoomMeta: meta,
	}, nil
}

// Start transitions the room to PLAYING and opens the first question window.
func (s *GameService) Start(ctx context.Context, code, hostID string) error {
	room, err := s.hostRoom(ctx, code, hostID)
	if err != nil {
		return err
	}
	if room.Status != model.RoomStatusLobby {
		return fmt.Errorf("room is not in lobby status")
	}

	now := time.Now()
	room.Status = model.RoomStatusPlaying
	room.CurrentQuestionIndex = 0
	room.StartedAt = &now
	if err := s.roomRepo.Update(ctx, room); err != nil {
		return err
	}
	if err := s.roomCache.SetStatus(ctx, code, model.RoomStatusPlaying); err != nil {
		return err
	}

	return s.openQuestion(ctx, room)
}

// NextQuestion force-closes the current window and advances to the next
// question, or finishes the game when questions run out. Returns true while
// the game is still going.
func (s *GameService) NextQuestion(ctx context.Context, code, hostID string) (bool, error) {
	room, err := s.hostRoom(ctx, code, hostID)
	if err != nil {
		return false, err
	}
	if room.Status != model.RoomStatusPlaying {
		return false, fmt.Errorf("room is not playing")
	}

	s.engine.CloseWindowNow(code)

	next := room.CurrentQuestionIndex + 1
	if next < len(room.QuestionIDs) {
		room.CurrentQuestionIndex = next
		if err := s.roomRepo.Update(ctx, room); err != nil {
			return false, err
		}
		if err := s.openQuestion(ctx, room); err != nil {
			return false, err
		}
		return true, nil
	}

	return false, s.finish(ctx, room)
}

// EndGame finishes the game immediately, regardless of remaining questions.
func (s *GameService) EndGame(ctx context.Context, code, hostID string) error {
	room, err := s.hostRoom(ctx, code, hostID)
	if err != nil {
		return err
	}
	if room.Status == model.RoomStatusFinished {
		return nil
	}
	s.engine.CloseWindowNow(code)
	return s.finish(ctx, room)
}

// SubmitAnswer grades the player's option against the room's current
// question and routes it through the engine's admission pipeline. The
// persistence continuation (answer row, durable score, leaderboard mirror)
// runs asynchronously; its failures never affect the live outcome.
func (s *GameService) SubmitAnswer(ctx context.Context, code, playerID string, optionIndex int) (*model.SubmitAnswerResponse, error) {
	room, err := s.roomRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, fmt.Errorf("room not found")
	}
	if room.Status != model.RoomStatusPlaying {
		return nil, fmt.Errorf("room is not playing")
	}

	question, err := s.questionAt(ctx, room, room.CurrentQuestionIndex)
	if err != nil {
		return nil, err
	}
	correct := question.CorrectOptionIndex == optionIndex

	index := room.CurrentQuestionIndex
	admittedCorrect := s.engine.Submit(code, playerID, correct, func() error {
		return s.persistAnswer(code, playerID, question.ID, index, optionIndex, correct)
	})

	return &model.SubmitAnswerResponse{Correct: admittedCorrect}, nil
}

// persistAnswer is the continuation the engine runs off the submit path.
func (s *GameService) persistAnswer(code, playerID, questionID string, questionIndex, optionIndex int, correct bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	answer := &model.Answer{
		RoomCode:       code,
		PlayerID:       playerID,
		QuestionID:     questionID,
		QuestionIndex:  questionIndex,
		SelectedOption: optionIndex,
		Correct:        correct,
		AnsweredAt:     time.Now(),
	}
	if err := s.answerRepo.Create(ctx, answer); err != nil {
		return fmt.Errorf("failed to persist answer: %w", err)
	}

	if correct {
		if err := s.playerRepo.IncrementScore(ctx, playerID, 1); err != nil {
			return fmt.Errorf("failed to persist score: %w", err)
		}
		if err := s.leaderboard.UpdateScore(ctx, code, playerID, s.engine.Score(code, playerID)); err != nil {
			return fmt.Errorf("failed to update leaderboard: %w", err)
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToPlayer(code, playerID, "answer_received", map[string]interface{}{
			"questionIndex": questionIndex,
		})
		s.broadcaster.BroadcastToHost(code, "player_answered", map[string]interface{}{
			"playerId":      playerID,
			"questionIndex": questionIndex,
		})
		if correct {
			s.broadcaster.BroadcastToHost(code, "leaderboard_update", s.engine.CurrentScores(code))
		}
	}
	return nil
}

// CurrentQuestion returns the active question without the correct index.
func (s *GameService) CurrentQuestion(ctx context.Context, code string) (*model.PublicQuestion, error) {
	room, err := s.roomRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if room == nil || room.Status != model.RoomStatusPlaying {
		return nil, nil
	}
	question, err := s.questionAt(ctx, room, room.CurrentQuestionIndex)
	if err != nil {
		return nil, err
	}
	return question.Public(room.CurrentQuestionIndex), nil
}

// Scores returns the live score snapshot for the room.
func (s *GameService) Scores(code string) map[string]int {
	return s.engine.CurrentScores(code)
}

// HasAnswered reports whether the player answered the current question.
func (s *GameService) HasAnswered(code, playerID string) bool {
	return s.engine.HasAnswered(code, playerID)
}

// WindowOpen reports whether the room currently accepts answers.
func (s *GameService) WindowOpen(code string) bool {
	return s.engine.WindowOpen(code)
}

// Ranking joins live scores with player nicknames, sorted by score
// descending. For finished rooms, whose live state is gone, it falls back to
// the persisted scores.
func (s *GameService) Ranking(ctx context.Context, code string) ([]model.RankingEntry, error) {
	players, err := s.playerRepo.ListByRoom(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	live := s.engine.CurrentScores(code)
	entries := make([]model.RankingEntry, 0, len(players))
	for _, p := range players {
		score := p.Score
		if live != nil {
			score = live[p.ID]
		}
		entries = append(entries, model.RankingEntry{
			PlayerID: p.ID,
			Nickname: p.Nickname,
			Score:    score,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// Leaderboard reads the top entries from the Redis ZSET mirror and joins
// them with nicknames. Live rooms only; finished rooms serve Ranking from
// the persisted scores.
func (s *GameService) Leaderboard(ctx context.Context, code string, limit int) ([]model.RankingEntry, error) {
	top, err := s.leaderboard.GetTop(ctx, code, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	entries := make([]model.RankingEntry, 0, len(top))
	for _, e := range top {
		nickname := ""
		if p, err := s.playerRepo.GetByID(ctx, e.PlayerID); err == nil && p != nil {
			nickname = p.Nickname
		}
		entries = append(entries, model.RankingEntry{
			PlayerID: e.PlayerID,
			Nickname: nickname,
			Score:    e.Score,
			Rank:     e.Rank,
		})
	}
	return entries, nil
}

// Rank returns the player's 1-indexed leaderboard position, -1 if absent.
func (s *GameService) Rank(ctx context.Context, code, playerID string) (int64, error) {
	return s.leaderboard.GetRank(ctx, code, playerID)
}

// PlayerAnswers returns the player's persisted answers for the room.
func (s *GameService) PlayerAnswers(ctx context.Context, code, playerID string) ([]*model.Answer, error) {
	answers, err := s.answerRepo.ListByRoomAndPlayer(ctx, code, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	return answers, nil
}

// DeleteRoom purges a room entirely: live state, cache keys, connections,
// and the persisted room, player, and answer records.
func (s *GameService) DeleteRoom(ctx context.Context, code, hostID string) error {
	if _, err := s.hostRoom(ctx, code, hostID); err != nil {
		return err
	}

	s.engine.RemoveRoom(code)
	if s.broadcaster != nil {
		s.broadcaster.DisconnectRoom(code)
	}

	if err := s.roomCache.Delete(ctx, code); err != nil {
		return err
	}
	if err := s.leaderboard.Delete(ctx, code); err != nil {
		return err
	}
	if err := s.answerRepo.DeleteByRoom(ctx, code); err != nil {
		return err
	}
	if err := s.playerRepo.DeleteByRoom(ctx, code); err != nil {
		return err
	}
	return s.roomRepo.Delete(ctx, code)
}

func (s *GameService) openQuestion(ctx context.Context, room *model.Room) error {
	question, err := s.questionAt(ctx, room, room.CurrentQuestionIndex)
	if err != nil {
		return err
	}

	s.engine.OpenWindow(room.Code, time.Duration(room.TimeLimitSec)*time.Second)

	if s.broadcaster != nil {
		payload := map[string]interface{}{
			"question":       question.Public(room.CurrentQuestionIndex),
			"timeLimitSec":   room.TimeLimitSec,
			"totalQuestions": len(room.QuestionIDs),
		}
		s.broadcaster.BroadcastToAllPlayers(room.Code, "question_opened", payload)
		s.broadcaster.BroadcastToHost(room.Code, "question_opened", payload)
	}
	return nil
}

func (s *GameService) finish(ctx context.Context, room *model.Room) error {
	now := time.Now()
	room.Status = model.RoomStatusFinished
	room.FinishedAt = &now
	if err := s.roomRepo.Update(ctx, room); err != nil {
		return err
	}

	// Final ranking needs the live scores, so broadcast before eviction.
	if s.broadcaster != nil {
		ranking, err := s.Ranking(ctx, room.Code)
		if err == nil {
			s.broadcaster.BroadcastToAllPlayers(room.Code, "game_finished", ranking)
			s.broadcaster.BroadcastToHost(room.Code, "game_finished", ranking)
		}
	}

	s.engine.RemoveRoom(room.Code)
	if s.broadcaster != nil {
		s.broadcaster.DisconnectRoom(room.Code)
	}

	// The durable record stays in Mongo; the per-room cache keys go.
	if err := s.roomCache.Delete(ctx, room.Code); err != nil {
		return err
	}
	return s.leaderboard.Delete(ctx, room.Code)
}

func (s *GameService) hostRoom(ctx context.Context, code, hostID string) (*model.Room, error) {
	room, err := s.roomRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, fmt.Errorf("room not found")
	}
	if room.HostID != hostID {
		return nil, fmt.Errorf("unauthorized: not room host")
	}
	return room, nil
}

func (s *GameService) questionAt(ctx context.Context, room *model.Room, index int) (*model.Question, error) {
	if index < 0 || index >= len(room.QuestionIDs) {
		return nil, fmt.Errorf("no question at index %d", index)
	}
	block, err := s.blockRepo.GetByID(ctx, room.BlockID)
	if err != nil {
		return nil, fmt.Errorf("failed to get block: %w", err)
	}
	if block == nil {
		return nil, fmt.Errorf("block not found")
	}
	question := block.QuestionByID(room.QuestionIDs[index])
	if question == nil {
		return nil, fmt.Errorf("question %s missing from block", room.QuestionIDs[index])
	}
	return question, nil
}

// selectQuestions fixes the question order for a game: a shuffled sample of
// N in random mode, otherwise the host's picks in block order.
func selectQuestions(block *model.Block, cfg model.GameConfig) ([]string, error) {
	var ids []string
	if cfg.RandomMode {
		all := make([]string, len(block.Questions))
		for i, q := range block.Questions {
			all[i] = q.ID
		}
		mrand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
		n := cfg.NumQuestions
		if n <= 0 || n > len(all) {
			n = len(all)
		}
		ids = all[:n]
	} else {
		selected := make(map[string]bool, len(cfg.SelectedQuestionIDs))
		for _, id := range cfg.SelectedQuestionIDs {
			selected[id] = true
		}
		for _, q := range block.Questions {
			if selected[q.ID] {
				ids = append(ids, q.ID)
			}
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no questions selected")
	}
	return ids, nil
}

// generateJoinCode creates a 6-char code over an unambiguous alphabet,
// retrying until it is unused.
func (s *GameService) generateJoinCode(ctx context.Context) (string, error) {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLen = 6

	for attempts := 0; attempts < 10; attempts++ {
		b := make([]byte, codeLen)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}

		code := make([]byte, codeLen)
		for i := range code {
			code[i] = chars[int(b[i])%len(chars)]
		}
		codeStr := string(code)

		exists, err := s.roomCache.Exists(ctx, codeStr)
		if err != nil {
			return "", err
		}
		if !exists {
			return codeStr, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique join code")
}
