package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/matzehuels/burrow/pkg/board"
	"github.com/matzehuels/burrow/pkg/buildinfo"
	errs "github.com/matzehuels/burrow/pkg/errors"
	"github.com/matzehuels/burrow/pkg/solver"
)

type solveRequest struct {
	Board         string `json:"board"`
	Tokens        string `json:"tokens"`
	Order         string `json:"order"` // "region" (default) or "row"
	Depth         int    `json:"depth"`
	Unfold        bool   `json:"unfold"`
	MaxExpansions int    `json:"max_expansions"`
	Refresh       bool   `json:"refresh"`
}

type solveResponse struct {
	ID string `json:"id"`
	*solver.Result
	Stats statsResponse `json:"stats"`
}

type statsResponse struct {
	Expanded     int   `json:"expanded"`
	Generated    int   `json:"generated"`
	Compactions  int   `json:"compactions"`
	PeakFrontier int   `json:"peak_frontier"`
	ElapsedMS    int64 `json:"elapsed_ms"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	ID      string `json:"id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	w.Header().Set("X-Solve-ID", id)

	var req solveRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, id, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	opts, err := s.solveOptions(req)
	if err != nil {
		s.writeError(w, id, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestTimeout)
	defer cancel()

	res, err := s.runner.Execute(ctx, opts)
	if err != nil {
		s.writeError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, solveResponse{
		ID:     id,
		Result: res,
		Stats: statsResponse{
			Expanded:     res.Stats.Expanded,
			Generated:    res.Stats.Generated,
			Compactions:  res.Stats.Compactions,
			PeakFrontier: res.Stats.PeakFrontier,
			ElapsedMS:    res.Stats.Elapsed.Milliseconds(),
		},
	})
}

func (s *Server) solveOptions(req solveRequest) (solver.Options, error) {
	opts := s.opts.Base
	opts.Board = req.Board
	opts.Tokens = req.Tokens
	opts.Unfold = req.Unfold
	opts.Refresh = req.Refresh
	opts.Logger = nil
	if req.Depth != 0 {
		opts.Depth = req.Depth
	}
	switch req.Order {
	case "", "region":
		opts.Order = board.RegionMajor
	case "row":
		opts.Order = board.RowMajor
	default:
		return opts, errs.New(errs.ErrCodeInvalidInput, "order must be region or row, got %q", req.Order)
	}

	if req.MaxExpansions < 0 {
		return opts, errs.New(errs.ErrCodeInvalidInput, "max_expansions must not be negative")
	}
	if req.MaxExpansions > 0 {
		opts.Search.MaxExpansions = req.MaxExpansions
	}
	if limit := s.opts.MaxExpansions; limit > 0 &&
		(opts.Search.MaxExpansions == 0 || opts.Search.MaxExpansions > limit) {
		opts.Search.MaxExpansions = limit
	}
	return opts, nil
}

func (s *Server) writeError(w http.ResponseWriter, id string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("solve failed", "id", id, "error", err)
	}
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{Error: errorBody{
		ID:      id,
		Code:    string(code),
		Message: errs.UserMessage(err),
	}})
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidToken, errs.ErrCodeInvalidDepth,
		errs.ErrCodeInvalidLayout, errs.ErrCodeInvalidBoard, errs.ErrCodeTokenCount:
		return http.StatusBadRequest
	case errs.ErrCodeNoSolution, errs.ErrCodeBudgetExhausted:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errs.ErrCodeCanceled:
		// The client went away; nobody reads this.
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
