package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	errs "github.com/matzehuels/burrow/pkg/errors"
	"github.com/matzehuels/burrow/pkg/solver"
)

// twoRooms needs 46 energy.
const twoRooms = "#########\n#.......#\n###B#A###\n  #A#B#\n  #####\n"

const deadlock = "###########\n#...C.A...#\n###.#B#.###\n  #A#B#C#\n  #######\n"

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	runner := solver.NewRunner(nil, nil, opts.Logger)
	ts := httptest.NewServer(New(runner, opts).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postSolve(t *testing.T, ts *httptest.Server, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/solve", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /v1/solve: %v", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func boardRequest(diagram string, extra string) string {
	b, _ := json.Marshal(diagram)
	return fmt.Sprintf(`{"board": %s%s}`, b, extra)
}

func TestSolve(t *testing.T) {
	ts := newTestServer(t, Options{})

	resp, body := postSolve(t, ts, boardRequest(twoRooms, ""))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var got struct {
		ID    string        `json:"id"`
		Cost  uint64        `json:"cost"`
		Moves []solver.Move `json:"moves"`
		Final string        `json:"final"`
		Stats statsResponse `json:"stats"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Cost != 46 {
		t.Errorf("cost = %d, want 46", got.Cost)
	}
	if _, err := uuid.Parse(got.ID); err != nil {
		t.Errorf("id %q is not a UUID: %v", got.ID, err)
	}
	if resp.Header.Get("X-Solve-ID") != got.ID {
		t.Errorf("X-Solve-ID = %q, want %q", resp.Header.Get("X-Solve-ID"), got.ID)
	}
	var sum uint64
	for _, m := range got.Moves {
		sum += m.Cost
	}
	if sum != got.Cost {
		t.Errorf("move costs sum to %d, want %d", sum, got.Cost)
	}
	if !strings.Contains(got.Final, "#A#B#") {
		t.Errorf("final board not sorted:\n%s", got.Final)
	}
	if got.Stats.Expanded == 0 {
		t.Error("stats.expanded = 0")
	}
}

func TestSolveTokens(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp, body := postSolve(t, ts, `{"tokens": "BA CD BC DA", "depth": 2}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
	var got struct {
		Cost uint64 `json:"cost"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Cost != 12521 {
		t.Errorf("cost = %d, want 12521", got.Cost)
	}
}

func TestSolveErrors(t *testing.T) {
	ts := newTestServer(t, Options{MaxExpansions: 1_000_000})

	tests := []struct {
		name   string
		body   string
		status int
		code   errs.Code
	}{
		{"malformed json", `{"board":`, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"unknown field", `{"boards": "x"}`, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"no input", `{}`, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"bad order", `{"tokens": "AB BA", "order": "diagonal"}`, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"negative budget", `{"tokens": "AB BA", "max_expansions": -1}`, http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"bad token", `{"tokens": "BA CD BC DZ"}`, http.StatusBadRequest, errs.ErrCodeInvalidToken},
		{"depth mismatch", `{"tokens": "BA CD BC DA", "depth": 4}`, http.StatusBadRequest, errs.ErrCodeTokenCount},
		{"diagram depth mismatch", `{"board": "#########\n#.......#\n###B#A###\n  #A#B#\n  #####\n", "depth": 4}`, http.StatusBadRequest, errs.ErrCodeInvalidDepth},
		{"no solution", boardRequest(deadlock, ""), http.StatusUnprocessableEntity, errs.ErrCodeNoSolution},
		{"budget", boardRequest(twoRooms, `, "max_expansions": 1`), http.StatusUnprocessableEntity, errs.ErrCodeBudgetExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := postSolve(t, ts, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (body %s)", resp.StatusCode, tt.status, body)
			}
			var got errorResponse
			if err := json.Unmarshal(body, &got); err != nil {
				t.Fatalf("decode %s: %v", body, err)
			}
			if got.Error.Code != string(tt.code) {
				t.Errorf("code = %q, want %q", got.Error.Code, tt.code)
			}
			if got.Error.Message == "" {
				t.Error("empty message")
			}
		})
	}
}

func TestSolveBodyTooLarge(t *testing.T) {
	ts := newTestServer(t, Options{})
	body := `{"board": "` + strings.Repeat(".", maxBodyBytes) + `"}`
	resp, _ := postSolve(t, ts, body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSolveOptionsBudget(t *testing.T) {
	s := New(nil, Options{MaxExpansions: 100, Logger: log.New(io.Discard)})
	tests := []struct {
		requested, want int
	}{
		{0, 100},
		{50, 50},
		{100, 100},
		{5000, 100},
	}
	for _, tt := range tests {
		opts, err := s.solveOptions(solveRequest{Tokens: "AB BA", MaxExpansions: tt.requested})
		if err != nil {
			t.Fatalf("solveOptions: %v", err)
		}
		if opts.Search.MaxExpansions != tt.want {
			t.Errorf("requested %d: budget = %d, want %d", tt.requested, opts.Search.MaxExpansions, tt.want)
		}
	}

	unlimited := New(nil, Options{Logger: log.New(io.Discard)})
	opts, _ := unlimited.solveOptions(solveRequest{Tokens: "AB BA"})
	if opts.Search.MaxExpansions != 0 {
		t.Errorf("uncapped budget = %d, want 0", opts.Search.MaxExpansions)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errs.New(errs.ErrCodeInvalidBoard, "x"), http.StatusBadRequest},
		{errs.New(errs.ErrCodeInvalidLayout, "x"), http.StatusBadRequest},
		{errs.New(errs.ErrCodeNoSolution, "x"), http.StatusUnprocessableEntity},
		{errs.New(errs.ErrCodeTimeout, "x"), http.StatusGatewayTimeout},
		{errs.New(errs.ErrCodeCanceled, "x"), http.StatusServiceUnavailable},
		{fmt.Errorf("solve: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got["status"] != "ok" {
		t.Errorf("status = %q", got["status"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "burrow_test_total", Help: "test"}))

	ts := newTestServer(t, Options{Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})})
	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "burrow_test_total") {
		t.Errorf("metrics missing counter:\n%s", body)
	}

	plain := newTestServer(t, Options{})
	resp, err = http.Get(plain.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("metrics without handler: status = %d, want 404", resp.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, Options{})
	resp, err := http.Get(ts.URL + "/v1/solve")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestRunShutdown(t *testing.T) {
	s := New(solver.NewRunner(nil, nil, nil), Options{Addr: "127.0.0.1:0", Logger: log.New(io.Discard)})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
