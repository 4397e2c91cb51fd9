package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"dmchat/internal/app/chat"
	"dmchat/internal/app/message"
	"dmchat/internal/app/user"
	"dmchat/internal/configs"
	"dmchat/internal/pkg/auth/jwt"
)

const testJWTSecret = "handler_test_secret"

// stubUserStore is an in-memory user.Store for handler tests.
type stubUserStore struct {
	mu    sync.Mutex
	users map[string]*user.User

	failWith error
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{users: make(map[string]*user.User)}
}

func (s *stubUserStore) Create(_ context.Context, u *user.User) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return nil, s.failWith
	}

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return nil, user.ErrDuplicateEmail
		}
	}

	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now().UTC()

	stored := *u
	s.users[u.ID.Hex()] = &stored
	return u, nil
}

func (s *stubUserStore) GetByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return nil, s.failWith
	}

	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *stubUserStore) GetByID(_ context.Context, id string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return nil, s.failWith
	}

	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *stubUserStore) ListOthers(_ context.Context, requesterID string) ([]user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return nil, s.failWith
	}

	var others []user.User
	for id, u := range s.users {
		if id == requesterID {
			continue
		}
		others = append(others, *u)
	}

	sort.Slice(others, func(i, j int) bool { return others[i].Username < others[j].Username })
	return others, nil
}

func (s *stubUserStore) UpdateProfile(_ context.Context, id string, username string, avatar string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return nil, s.failWith
	}

	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}

	if username != "" {
		u.Username = username
	}
	if avatar != "" {
		u.Avatar = avatar
	}

	copied := *u
	return &copied, nil
}

// stubMessageStore is an in-memory message.Store. Inserted messages get
// strictly increasing timestamps so ordering assertions are deterministic.
type stubMessageStore struct {
	mu       sync.Mutex
	messages []message.Message
	clock    time.Time

	failWith error
}

func newStubMessageStore() *stubMessageStore {
	return &stubMessageStore{clock: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (s *stubMessageStore) Insert(_ context.Context, m *message.Message) (*message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return nil, s.failWith
	}

	s.clock = s.clock.Add(time.Second)

	m.ID = primitive.NewObjectID()
	m.CreatedAt = s.clock

	s.messages = append(s.messages, *m)
	return m, nil
}

func (s *stubMessageStore) ListConversation(_ context.Context, userA string, userB string) ([]message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return nil, s.failWith
	}

	a, err := primitive.ObjectIDFromHex(userA)
	if err != nil {
		return nil, message.ErrInvalidID
	}
	b, err := primitive.ObjectIDFromHex(userB)
	if err != nil {
		return nil, message.ErrInvalidID
	}

	var result []message.Message
	for _, m := range s.messages {
		if (m.Sender == a && m.Receiver == b) || (m.Sender == b && m.Receiver == a) {
			result = append(result, m)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// stubStorage records uploads and deletions instead of talking to a bucket.
type stubStorage struct {
	mu       sync.Mutex
	uploads  map[string]string // key -> mime type
	deleted  []string
	failWith error
}

func newStubStorage() *stubStorage {
	return &stubStorage{uploads: make(map[string]string)}
}

func (s *stubStorage) Upload(_ context.Context, key string, mimeType string, body io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return s.failWith
	}

	if _, err := io.Copy(io.Discard, body); err != nil {
		return err
	}

	s.uploads[key] = mimeType
	return nil
}

func (s *stubStorage) PresignDownload(_ context.Context, key string, _ time.Duration) (string, error) {
	if s.failWith != nil {
		return "", s.failWith
	}
	return "https://signed.example/" + key, nil
}

func (s *stubStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleted = append(s.deleted, key)
	return nil
}

func (s *stubStorage) deletedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.deleted...)
}

// testDeps bundles the AppDeps with direct handles on the stubs.
type testDeps struct {
	*AppDeps
	users    *stubUserStore
	messages *stubMessageStore
	storage  *stubStorage
}

func newTestDeps(t *testing.T) *testDeps {
	t.Helper()

	gateway := chat.NewGateway(configs.RelayTargeted)
	t.Cleanup(gateway.Shutdown)

	users := newStubUserStore()
	messages := newStubMessageStore()
	blobStore := newStubStorage()

	return &testDeps{
		AppDeps: &AppDeps{
			Gateway: gateway,
			Config: &configs.AppConfig{
				Environment:     "development",
				Port:            8080,
				JWTSecret:       testJWTSecret,
				RelayPolicy:     configs.RelayTargeted,
				S3PublicBaseURL: "https://cdn.example/dmchat",
			},
			Users:    users,
			Messages: messages,
			Storage:  blobStore,
		},
		users:    users,
		messages: messages,
		storage:  blobStore,
	}
}

// mustCreateUser seeds an account with a real bcrypt hash.
func mustCreateUser(t *testing.T, deps *testDeps, username, email, password string) *user.User {
	t.Helper()

	passwordHash := ""
	if password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		passwordHash = string(hashed)
	}

	created, err := deps.users.Create(context.Background(), &user.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	})
	require.NoError(t, err)
	return created
}

// jsonRequest builds a JSON request body with the right content type.
func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	r := httptest.NewRequest(method, target, bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// asUser injects an authenticated identity the way jwt.RequireAuth would.
func asUser(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), jwt.ContextAuthPayloadKey, &jwt.Payload{UserID: userID})
	return r.WithContext(ctx)
}

// apiResponse mirrors resp.JSONResponse with the data kept raw for
// per-test decoding.
type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()

	var out apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out),
		fmt.Sprintf("body was: %s", rec.Body.String()))
	return out
}

func decodeData(t *testing.T, res apiResponse, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(res.Data, dst))
}
