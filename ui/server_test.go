package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"gopitch/adapters/llm"
	"gopitch/adapters/stt"
	"gopitch/internal/analysis"
	"gopitch/internal/auth"
	"gopitch/internal/config"
	"gopitch/internal/errors"
	"gopitch/internal/session"
	"gopitch/internal/storage"
	"gopitch/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// In-memory repositories matching the Postgres adapters' error contract

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *memUserRepo) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return errors.DuplicateEmail(user.Email)
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, errors.NotFound("user")
}

func (r *memUserRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, errors.NotFound("user")
}

type memPitchRepo struct {
	mu      sync.Mutex
	pitches []*models.Pitch
}

func (r *memPitchRepo) CreatePitch(ctx context.Context, pitch *models.Pitch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	pitch.ID = uuid.New()
	pitch.CreatedAt = time.Now()
	copied := *pitch
	r.pitches = append(r.pitches, &copied)
	return nil
}

func (r *memPitchRepo) GetPitch(ctx context.Context, userID, pitchID uuid.UUID) (*models.Pitch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pitches {
		if p.ID == pitchID && p.UserID == userID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, errors.NotFound("pitch")
}

func (r *memPitchRepo) ListUserPitches(ctx context.Context, userID uuid.UUID) ([]*models.Pitch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Pitch
	for i := len(r.pitches) - 1; i >= 0; i-- {
		if r.pitches[i].UserID == userID {
			copied := *r.pitches[i]
			out = append(out, &copied)
		}
	}
	return out, nil
}

type testEnv struct {
	server      *Server
	transcriber *stt.MockTranscriber
	users       *memUserRepo
	pitches     *memPitchRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := newMemUserRepo()
	pitches := &memPitchRepo{}
	authSvc := auth.NewService("test-secret", time.Hour, bcrypt.MinCost)
	files, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("file store: %v", err)
	}

	transcriber := &stt.MockTranscriber{}
	analyzer := analysis.NewAnalyzer(nil, nil)
	investor := llm.NewInvestorAdapter(nil, "", nil)
	sessions := session.NewManager(transcriber, analyzer, investor, config.SessionConfig{}, nil)

	server := NewServer(Deps{
		Users:       users,
		Pitches:     pitches,
		Auth:        authSvc,
		Files:       files,
		Sessions:    sessions,
		Transcriber: transcriber,
		Analyzer:    analyzer,
		Investor:    investor,
	})

	return &testEnv{server: server, transcriber: transcriber, users: users, pitches: pitches}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) registerAndLogin(t *testing.T, email string) string {
	t.Helper()
	register, _ := json.Marshal(map[string]string{
		"email": email, "username": "alice", "password": "supersecret1",
	})
	rec := e.do(t, http.MethodPost, "/register", "", bytes.NewBuffer(register), "application/json")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body)
	}

	login, _ := json.Marshal(map[string]string{"email": email, "password": "supersecret1"})
	rec = e.do(t, http.MethodPost, "/login", "", bytes.NewBuffer(login), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var resp models.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("login response missing access token")
	}
	return resp.AccessToken
}

// wavUpload builds a multipart body with a tone encoded as 16-bit PCM WAV
func wavUpload(t *testing.T, title string, seconds float64) (*bytes.Buffer, string) {
	t.Helper()
	samples := make([]float64, int(seconds*16000))
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*300*float64(i)/16000)
	}
	return multipartUpload(t, title, analysis.EncodeWAV(samples, 16000))
}

func multipartUpload(t *testing.T, title string, audio []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("title", title); err != nil {
		t.Fatal(err)
	}
	part, err := writer.CreateFormFile("audio_file", "pitch.wav")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(audio); err != nil {
		t.Fatal(err)
	}
	writer.Close()
	return &body, writer.FormDataContentType()
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.registerAndLogin(t, "alice@example.com")

	register, _ := json.Marshal(map[string]string{
		"email": "alice@example.com", "username": "alice2", "password": "supersecret1",
	})
	rec := env.do(t, http.MethodPost, "/register", "", bytes.NewBuffer(register), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate email: expected 400, got %d", rec.Code)
	}
}

func TestRegister_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	cases := map[string]map[string]string{
		"missing email":  {"username": "alice", "password": "supersecret1"},
		"bad email":      {"email": "not-an-email", "username": "alice", "password": "supersecret1"},
		"short password": {"email": "a@b.com", "username": "alice", "password": "short"},
	}
	for name, payload := range cases {
		raw, _ := json.Marshal(payload)
		rec := env.do(t, http.MethodPost, "/register", "", bytes.NewBuffer(raw), "application/json")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, rec.Code)
		}
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.registerAndLogin(t, "alice@example.com")

	for name, payload := range map[string]map[string]string{
		"wrong password": {"email": "alice@example.com", "password": "wrongpassword"},
		"unknown email":  {"email": "nobody@example.com", "password": "supersecret1"},
	} {
		raw, _ := json.Marshal(payload)
		rec := env.do(t, http.MethodPost, "/login", "", bytes.NewBuffer(raw), "application/json")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}

func TestPitchRoutes_RequireAuth(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/pitches", "/pitches/export", "/pitches/" + uuid.NewString()} {
		rec := env.do(t, http.MethodGet, path, "", nil, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token: expected 401, got %d", path, rec.Code)
		}
	}

	rec := env.do(t, http.MethodGet, "/pitches", "not-a-real-token", nil, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: expected 401, got %d", rec.Code)
	}
}

func TestCreatePitch_TooSmallRejectedBeforeModel(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice@example.com")

	body, contentType := multipartUpload(t, "Demo", []byte("tiny"))
	rec := env.do(t, http.MethodPost, "/pitches", token, body, contentType)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body)
	}
	if env.transcriber.Calls != 0 {
		t.Errorf("rejected upload must not reach the model, got %d calls", env.transcriber.Calls)
	}
}

func TestCreatePitch_MissingTitle(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice@example.com")

	body, contentType := multipartUpload(t, "", []byte("tiny"))
	rec := env.do(t, http.MethodPost, "/pitches", token, body, contentType)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCreatePitch_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	env.transcriber.Text = "we help founders rehearse the pitch that raises their round"
	token := env.registerAndLogin(t, "alice@example.com")

	body, contentType := wavUpload(t, "Demo", 2.0)
	rec := env.do(t, http.MethodPost, "/pitches", token, body, contentType)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}

	var pitch models.Pitch
	if err := json.Unmarshal(rec.Body.Bytes(), &pitch); err != nil {
		t.Fatalf("decoding pitch: %v", err)
	}
	if pitch.Title != "Demo" {
		t.Errorf("expected title Demo, got %q", pitch.Title)
	}
	if pitch.Transcript != env.transcriber.Text {
		t.Errorf("expected transcript stored, got %q", pitch.Transcript)
	}

	result, err := pitch.GetAnalysis()
	if err != nil || result == nil {
		t.Fatalf("stored analysis unreadable: %v", err)
	}
	if result.ConfidenceScore < 0 || result.ConfidenceScore > 100 {
		t.Errorf("confidence out of range: %f", result.ConfidenceScore)
	}
	switch result.Grade {
	case "A", "B", "C", "D", "F":
	default:
		t.Errorf("unexpected grade %q", result.Grade)
	}

	// The pitch shows up in the listing and by id
	rec = env.do(t, http.MethodGet, "/pitches", token, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var listed []models.Pitch
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decoding listing: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 pitch, got %d", len(listed))
	}

	rec = env.do(t, http.MethodGet, "/pitches/"+pitch.ID.String(), token, nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("get by id: expected 200, got %d", rec.Code)
	}
}

func TestCreatePitch_DegradesWhenTranscriptionFails(t *testing.T) {
	env := newTestEnv(t)
	env.transcriber.Error = errors.ExternalServiceError("transcription", context.DeadlineExceeded)
	token := env.registerAndLogin(t, "alice@example.com")

	body, contentType := wavUpload(t, "Demo", 2.0)
	rec := env.do(t, http.MethodPost, "/pitches", token, body, contentType)
	if rec.Code != http.StatusCreated {
		t.Fatalf("degraded upload should still succeed, got %d: %s", rec.Code, rec.Body)
	}

	var pitch models.Pitch
	if err := json.Unmarshal(rec.Body.Bytes(), &pitch); err != nil {
		t.Fatal(err)
	}
	result, err := pitch.GetAnalysis()
	if err != nil || result == nil {
		t.Fatalf("expected placeholder analysis: %v", err)
	}
	if !result.Degraded {
		t.Error("analysis should be marked degraded")
	}
}

func TestListPitches_EmptyIsArray(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice@example.com")

	rec := env.do(t, http.MethodGet, "/pitches", token, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]" {
		t.Errorf("empty listing should be a JSON array, got %s", body)
	}
}

func TestGetPitch_NotFound(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice@example.com")

	rec := env.do(t, http.MethodGet, "/pitches/"+uuid.NewString(), token, nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/pitches/not-a-uuid", token, nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed id: expected 400, got %d", rec.Code)
	}
}

func TestGetPitch_OtherUsersPitchHidden(t *testing.T) {
	env := newTestEnv(t)
	env.transcriber.Text = "we sell telemetry dashboards to factories"
	aliceToken := env.registerAndLogin(t, "alice@example.com")

	body, contentType := wavUpload(t, "Demo", 2.0)
	rec := env.do(t, http.MethodPost, "/pitches", aliceToken, body, contentType)
	var pitch models.Pitch
	if err := json.Unmarshal(rec.Body.Bytes(), &pitch); err != nil {
		t.Fatal(err)
	}

	bobToken := env.registerAndLogin(t, "bob@example.com")
	rec = env.do(t, http.MethodGet, "/pitches/"+pitch.ID.String(), bobToken, nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("another user's pitch should 404, got %d", rec.Code)
	}
}

func TestPitchReport_RendersHTML(t *testing.T) {
	env := newTestEnv(t)
	env.transcriber.Text = "our roastery subscription retains nine out of ten customers"
	token := env.registerAndLogin(t, "alice@example.com")

	body, contentType := wavUpload(t, "Demo", 2.0)
	rec := env.do(t, http.MethodPost, "/pitches", token, body, contentType)
	var pitch models.Pitch
	if err := json.Unmarshal(rec.Body.Bytes(), &pitch); err != nil {
		t.Fatal(err)
	}

	rec = env.do(t, http.MethodGet, "/pitches/"+pitch.ID.String()+"/report", token, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("expected HTML, got %s", ct)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("<h1")) {
		t.Error("report should contain rendered markdown headings")
	}
}

func TestExportPitches_ReturnsWorkbook(t *testing.T) {
	env := newTestEnv(t)
	env.transcriber.Text = "we make compostable packaging for meal kits"
	token := env.registerAndLogin(t, "alice@example.com")

	body, contentType := wavUpload(t, "Demo", 2.0)
	if rec := env.do(t, http.MethodPost, "/pitches", token, body, contentType); rec.Code != http.StatusCreated {
		t.Fatalf("upload failed: %d", rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/pitches/export", token, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type %s", ct)
	}
	// xlsx files are zip archives
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("export is not a zip-based workbook")
	}
}
