package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeResponder struct {
	response string
	err      error
	threadID string
}

func (f *fakeResponder) Respond(ctx context.Context, threadID, message string) (string, error) {
	f.threadID = threadID
	return f.response, f.err
}

func TestHandleChat(t *testing.T) {
	responder := &fakeResponder{response: "hi there"}
	h := NewHandler(responder, t.TempDir(), zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"message":"hello","thread_id":"t1"}`))
	rec := httptest.NewRecorder()
	h.HandleChat(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ChatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "hi there", resp.Response)
	assert.Equal(t, "t1", resp.ThreadID)
}

func TestHandleChatAssignsThreadID(t *testing.T) {
	h := NewHandler(&fakeResponder{response: "hi"}, t.TempDir(), zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"message":"hello"}`))
	rec := httptest.NewRecorder()
	h.HandleChat(rec, req)

	var resp ChatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.ThreadID)
}

func TestHandleChatBadRequests(t *testing.T) {
	h := NewHandler(&fakeResponder{}, t.TempDir(), zap.NewNop())

	cases := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"bad json", http.MethodPost, "{", http.StatusBadRequest},
		{"empty message", http.MethodPost, `{"message":"  "}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/chat", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.HandleChat(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestHandleChatGenerationFailure(t *testing.T) {
	h := NewHandler(&fakeResponder{err: errors.New("model down")}, t.TempDir(), zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"message":"hello"}`))
	rec := httptest.NewRecorder()
	h.HandleChat(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleImage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pic.png"), []byte("png-bytes"), 0o644))
	h := NewHandler(&fakeResponder{}, dir, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/image/pic.png", nil)
	rec := httptest.NewRecorder()
	h.HandleImage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())
}

func TestHandleImageRejectsTraversalAndBadExt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.txt"), []byte("secret"), 0o644))
	h := NewHandler(&fakeResponder{}, dir, zap.NewNop())

	for _, path := range []string{
		"/api/image/../../etc/passwd",
		"/api/image/secret.txt",
		"/api/image/missing.png",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.HandleImage(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestHandleHealth(t *testing.T) {
	h := NewHandler(&fakeResponder{}, t.TempDir(), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	h.HandleHealth(rec, req)

	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}
