package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careline/pkg/auth"
	"careline/pkg/directory"
	"careline/pkg/models"
	"careline/pkg/store"
)

const testSecret = "test-secret"

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	require.NoError(t, store.Open(t.TempDir()))
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, directory.Seed([]models.Identity{
		{ID: "ann", Name: "Ann Summers", Role: "caregiver"},
		{ID: "bob", Name: "Bob Oduya", Role: "client"},
		{ID: "carol", Name: "Carol Reyes", Role: "client"},
	}))
	return Handler(auth.Config{JWTSecret: testSecret, RPS: 1000, Burst: 1000})
}

func token(t *testing.T, sub, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if role != "" {
		claims["role"] = role
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

func do(t *testing.T, h http.Handler, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), out), rr.Body.String())
}

func TestAuthRequired(t *testing.T) {
	h := newHandler(t)

	rr := do(t, h, http.MethodGet, "/v1/threads", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// token signed with the wrong key
	bad, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ann"}).
		SignedString([]byte("other-secret"))
	require.NoError(t, err)
	rr = do(t, h, http.MethodGet, "/v1/threads", bad, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// token without a subject
	nosub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "client"}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)
	rr = do(t, h, http.MethodGet, "/v1/threads", nosub, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestFindOrCreateThread(t *testing.T) {
	h := newHandler(t)
	ann := token(t, "ann", "caregiver")

	rr := do(t, h, http.MethodPost, "/v1/threads", ann, map[string]string{"participantId": "bob"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created struct {
		Message  string `json:"message"`
		ThreadID string `json:"threadId"`
	}
	decode(t, rr, &created)
	assert.Equal(t, "thread created", created.Message)
	assert.NotEmpty(t, created.ThreadID)

	// same pair from the other side answers 200 with the same id
	rr = do(t, h, http.MethodPost, "/v1/threads", token(t, "bob", "client"),
		map[string]string{"participantId": "ann"})
	require.Equal(t, http.StatusOK, rr.Code)
	var existing struct {
		Message  string `json:"message"`
		ThreadID string `json:"threadId"`
	}
	decode(t, rr, &existing)
	assert.Equal(t, "thread already exists", existing.Message)
	assert.Equal(t, created.ThreadID, existing.ThreadID)
}

func TestFindOrCreateUnknownParticipantIs404(t *testing.T) {
	h := newHandler(t)
	rr := do(t, h, http.MethodPost, "/v1/threads", token(t, "ann", "caregiver"),
		map[string]string{"participantId": "stranger"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "participant not found")
}

func TestListThreads(t *testing.T) {
	h := newHandler(t)
	ann := token(t, "ann", "caregiver")

	rr := do(t, h, http.MethodGet, "/v1/threads", ann, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))

	rr = do(t, h, http.MethodPost, "/v1/threads", ann, map[string]string{"participantId": "bob"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, h, http.MethodGet, "/v1/threads", ann, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var sums []models.ThreadSummary
	decode(t, rr, &sums)
	require.Len(t, sums, 1)
	assert.Equal(t, "bob", sums[0].ParticipantID)
	assert.Equal(t, "Bob Oduya", sums[0].ParticipantName)
}

func TestMessageLifecycle(t *testing.T) {
	h := newHandler(t)
	ann := token(t, "ann", "caregiver")
	bob := token(t, "bob", "client")

	rr := do(t, h, http.MethodPost, "/v1/threads", ann, map[string]string{"participantId": "bob"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var th struct {
		ThreadID string `json:"threadId"`
	}
	decode(t, rr, &th)

	rr = do(t, h, http.MethodPost, "/v1/threads/"+th.ThreadID+"/messages", ann,
		map[string]string{"content": "hello bob"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var sent models.MessageView
	decode(t, rr, &sent)
	assert.Equal(t, "hello bob", sent.Content)
	assert.Equal(t, "ann", sent.Sender)
	assert.False(t, sent.IsRead)

	// bob reads, which marks ann's message read
	rr = do(t, h, http.MethodGet, "/v1/threads/"+th.ThreadID+"/messages", bob, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var views []models.MessageView
	decode(t, rr, &views)
	require.Len(t, views, 1)
	assert.True(t, views[0].IsRead)

	rr = do(t, h, http.MethodPut, "/v1/threads/"+th.ThreadID+"/messages/"+sent.ID, ann,
		map[string]string{"content": "hello again"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "message updated")

	rr = do(t, h, http.MethodDelete, "/v1/threads/"+th.ThreadID+"/messages/"+sent.ID, ann, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "message deleted")

	rr = do(t, h, http.MethodGet, "/v1/threads/"+th.ThreadID+"/messages", ann, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	views = nil
	decode(t, rr, &views)
	assert.Empty(t, views)
}

func TestSendRejectsEmptyContent(t *testing.T) {
	h := newHandler(t)
	ann := token(t, "ann", "caregiver")

	rr := do(t, h, http.MethodPost, "/v1/threads", ann, map[string]string{"participantId": "bob"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var th struct {
		ThreadID string `json:"threadId"`
	}
	decode(t, rr, &th)

	rr = do(t, h, http.MethodPost, "/v1/threads/"+th.ThreadID+"/messages", ann,
		map[string]string{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSendWithAttachment(t *testing.T) {
	h := newHandler(t)
	ann := token(t, "ann", "caregiver")

	rr := do(t, h, http.MethodPost, "/v1/threads", ann, map[string]string{"participantId": "bob"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var th struct {
		ThreadID string `json:"threadId"`
	}
	decode(t, rr, &th)

	rr = do(t, h, http.MethodPost, "/v1/threads/"+th.ThreadID+"/messages", ann, map[string]any{
		"content":        "my location",
		"attachmentType": "location",
		"attachmentData": map[string]float64{"latitude": 52.37, "longitude": 4.89},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var sent models.MessageView
	decode(t, rr, &sent)
	assert.Equal(t, models.AttachmentLocation, sent.AttachmentType)
	require.NotNil(t, sent.Location)
	assert.Equal(t, 52.37, sent.Location.Latitude)
}

func TestOutsiderSeesNotFound(t *testing.T) {
	h := newHandler(t)
	ann := token(t, "ann", "caregiver")

	rr := do(t, h, http.MethodPost, "/v1/threads", ann, map[string]string{"participantId": "bob"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var th struct {
		ThreadID string `json:"threadId"`
	}
	decode(t, rr, &th)

	carol := token(t, "carol", "client")
	rr = do(t, h, http.MethodGet, "/v1/threads/"+th.ThreadID+"/messages", carol, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = do(t, h, http.MethodPost, "/v1/threads/"+th.ThreadID+"/messages", carol,
		map[string]string{"content": "let me in"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEditByRecipientIs404(t *testing.T) {
	h := newHandler(t)
	ann := token(t, "ann", "caregiver")
	bob := token(t, "bob", "client")

	rr := do(t, h, http.MethodPost, "/v1/threads", ann, map[string]string{"participantId": "bob"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var th struct {
		ThreadID string `json:"threadId"`
	}
	decode(t, rr, &th)

	rr = do(t, h, http.MethodPost, "/v1/threads/"+th.ThreadID+"/messages", ann,
		map[string]string{"content": "only mine"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var sent models.MessageView
	decode(t, rr, &sent)

	rr = do(t, h, http.MethodPut, "/v1/threads/"+th.ThreadID+"/messages/"+sent.ID, bob,
		map[string]string{"content": "rewritten"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = do(t, h, http.MethodDelete, "/v1/threads/"+th.ThreadID+"/messages/"+sent.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPrincipalUpsert(t *testing.T) {
	h := newHandler(t)

	// a regular participant may not write the directory
	rr := do(t, h, http.MethodPost, "/v1/principals", token(t, "ann", "caregiver"),
		models.Identity{ID: "dave", Name: "Dave Kim", Role: "client"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(t, h, http.MethodPost, "/v1/principals", token(t, "svc-identity", "backend"),
		models.Identity{ID: "dave", Name: "Dave Kim", Role: "client"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// the new principal is immediately usable as a thread participant
	rr = do(t, h, http.MethodPost, "/v1/threads", token(t, "ann", "caregiver"),
		map[string]string{"participantId": "dave"})
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, h, http.MethodPost, "/v1/principals", token(t, "svc-identity", "backend"),
		models.Identity{ID: "", Name: "Nameless"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHealthEndpoints(t *testing.T) {
	h := newHandler(t)
	rr := do(t, h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, h, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, h, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
