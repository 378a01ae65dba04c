//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brightpath-ai/tutorflow/internal/api/handlers"
	"github.com/brightpath-ai/tutorflow/internal/chunker"
	"github.com/brightpath-ai/tutorflow/internal/engine"
	"github.com/brightpath-ai/tutorflow/internal/index"
	"github.com/brightpath-ai/tutorflow/internal/server"
	"github.com/brightpath-ai/tutorflow/internal/service"
	"github.com/brightpath-ai/tutorflow/internal/stages"
)

const testAPIKey = "e2e-test-key"

// wordEmbedder embeds text as a deterministic bag-of-letters vector so that
// related texts land near each other without any external provider.
type wordEmbedder struct{}

func (wordEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		}
	}
	return vec, nil
}

// scriptedGenerator answers each pipeline prompt with a canned JSON reply.
type scriptedGenerator struct {
	intentReply   string
	evaluateReply string
	solveReply    string
	questionReply string
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "classify their intent"):
		return g.intentReply, nil
	case strings.Contains(prompt, "evaluating a student's solution"):
		return g.evaluateReply, nil
	case strings.Contains(prompt, "step by step"):
		return g.solveReply, nil
	case strings.Contains(prompt, "practice questions"):
		return g.questionReply, nil
	}
	return "", fmt.Errorf("unexpected prompt")
}

// Env is a full in-process deployment: real router, middleware, services,
// chunker, index and engine, with scripted model replies.
type Env struct {
	T      *testing.T
	Server *httptest.Server
}

func SetupEnv(t *testing.T, gen *scriptedGenerator) *Env {
	t.Helper()

	store := index.NewStore()
	embedder := wordEmbedder{}

	knowledgeSvc := service.NewKnowledgeService(embedder, store, nil, nil, nil,
		chunker.Config{ChunkSize: 200, Overlap: 40})
	tutorSvc := service.NewTutorService(gen, store, embedder, nil, engine.Config{},
		stages.RetrievalConfig{K: 3, DiversityLambda: 0.7})

	router := server.NewRouter(server.RouterConfig{
		AuthValidator:    service.NewAuthService(testAPIKey),
		AuthEnabled:      true,
		TutorHandler:     handlers.NewTutorHandler(tutorSvc),
		KnowledgeHandler: handlers.NewKnowledgeHandler(knowledgeSvc, nil),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &Env{T: t, Server: srv}
}

type apiResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func (e *Env) do(method, path string, body any, authed bool) (int, []byte) {
	e.T.Helper()

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			e.T.Fatalf("marshal request: %v", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, e.Server.URL+path, reqBody)
	if err != nil {
		e.T.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+testAPIKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		e.T.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		e.T.Fatalf("read response: %v", err)
	}
	return resp.StatusCode, respBody
}

func (e *Env) Post(path string, body any) (int, []byte) {
	return e.do(http.MethodPost, path, body, true)
}

func (e *Env) Get(path string) (int, []byte) {
	return e.do(http.MethodGet, path, nil, true)
}

func (e *Env) PostUnauthed(path string, body any) (int, []byte) {
	return e.do(http.MethodPost, path, body, false)
}
