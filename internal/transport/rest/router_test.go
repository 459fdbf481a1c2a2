package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizlive/config"
	"quizlive/internal/model"
	"quizlive/internal/service"
	"quizlive/internal/transport/ws"
)

type memBlockRepo struct {
	blocks map[string]*model.Block
}

func (r *memBlockRepo) Create(ctx context.Context, block *model.Block) error {
	if block.ID == "" {
		block.ID = "b1"
	}
	r.blocks[block.ID] = block
	return nil
}

func (r *memBlockRepo) GetByID(ctx context.Context, id string) (*model.Block, error) {
	return r.blocks[id], nil
}

func (r *memBlockRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Block, error) {
	var out []*model.Block
	for _, b := range r.blocks {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memBlockRepo) Update(ctx context.Context, block *model.Block) error {
	r.blocks[block.ID] = block
	return nil
}

func (r *memBlockRepo) Delete(ctx context.Context, id string) error {
	delete(r.blocks, id)
	return nil
}

func newTestRouter() http.Handler {
	authSvc := service.NewAuthService(&config.Config{
		HostUsername: "admin",
		HostPassword: "secret",
		JWTSecret:    "test-secret",
	})
	blockSvc := service.NewBlockService(&memBlockRepo{blocks: make(map[string]*model.Block)})

	return NewRouter(&Container{
		AuthService:  authSvc,
		BlockService: blockSvc,
		GameService:  &service.GameService{},
		WSHub:        ws.NewHub(),
	})
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func hostToken(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doJSON(t, router, "POST", "/v1/auth/login", "", model.LoginRequest{Username: "admin", Password: "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLoginEndpoint(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, "POST", "/v1/auth/login", "", model.LoginRequest{Username: "admin", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := hostToken(t, router)
	assert.NotEmpty(t, token)
}

func TestHostRoutesRequireToken(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, "GET", "/v1/blocks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, "GET", "/v1/blocks", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, "DELETE", "/v1/rooms/ABC123", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBlockCreateAndList(t *testing.T) {
	router := newTestRouter()
	token := hostToken(t, router)

	block := model.Block{
		Name: "Geography",
		Questions: []model.Question{
			{Statement: "Capital of France?", Options: []string{"Paris", "Lyon"}, CorrectOptionIndex: 0},
		},
	}
	rec := doJSON(t, router, "POST", "/v1/blocks", token, block)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Block
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)

	rec = doJSON(t, router, "GET", "/v1/blocks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var blocks []model.Block
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &blocks))
	assert.Len(t, blocks, 1)
}

func TestPlayerRoutesRequirePlayerToken(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, "POST", "/v1/rooms/ABC123/answers", "", model.SubmitAnswerRequest{OptionIndex: 0})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, "GET", "/v1/rooms/ABC123/answers/mine", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A host token is not a player token.
	token := hostToken(t, router)
	rec = doJSON(t, router, "POST", "/v1/rooms/ABC123/answers", token, model.SubmitAnswerRequest{OptionIndex: 0})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
