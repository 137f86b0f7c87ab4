// Package agent is the optional HTTP surface for driving a trial on a
// remote host (D6), grounded on jolt's pkg/agent/server.go
// (NewServer/ListenAndServe/handleRun/handleHealth), adapted from "POST
// a Params blob, get an engine.Result back" into "POST a TrialSpec, get
// a TrialResult back" against this repo's pkg/diskbench.Engine. The
// multi-node fan-out jolt's pkg/cluster layers on top of this server is
// out of scope (spec.md §1 Non-goals: multi-process coordination); this
// package only exposes one host's engine over HTTP for a caller that
// wants to drive it remotely.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/diskbench/diskbench/internal/model"
	"github.com/diskbench/diskbench/pkg/diskbench"
)

// Server exposes one Engine over HTTP.
type Server struct {
	eng *diskbench.Engine
}

// NewServer wraps an already-constructed engine, the same "engine is
// built once, server holds a reference" shape jolt's NewServer uses,
// minus the per-request path override (this repo's TrialSpec carries
// its own FilePath already).
func NewServer(eng *diskbench.Engine) *Server {
	return &Server{eng: eng}
}

// Handler returns the server's routes as an http.Handler, registering
// /trial and /health exactly as jolt's agent registers /run and /health.
// Exposed separately from ListenAndServe so tests can drive it with
// httptest.NewServer.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/trial", s.handleTrial)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// ListenAndServe starts the HTTP server on port.
func (s *Server) ListenAndServe(port int) error {
	addr := fmt.Sprintf(":%d", port)
	fmt.Printf("diskbench agent listening on %s\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleTrial decodes a TrialSpec, runs it synchronously (no progress
// streaming over HTTP; §6 call shape does not define one), and responds
// with the TrialResult as JSON. Mirrors jolt's handleRun: 400 on a bad
// body, 500 if the engine itself fails, 200 with the JSON result
// otherwise — including trials where the engine ran to completion but
// flagged diagnostics (cancelled, drain timeout), since those are not
// engine failures per §7's propagation policy.
func (s *Server) handleTrial(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var spec model.TrialSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		http.Error(w, fmt.Sprintf("invalid body: %v", err), http.StatusBadRequest)
		return
	}

	res, err := s.eng.RunTrial(r.Context(), spec, nil)
	if err != nil {
		http.Error(w, fmt.Sprintf("trial failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		fmt.Printf("failed to encode trial response: %v\n", err)
	}
}

// RunRemoteTrial is the client half: POSTs spec to a running agent at
// addr and decodes its TrialResult. Grounded on jolt's pkg/cluster
// client, reduced to a single request/response (no node-set fan-out,
// per the same Non-goal the package doc comment notes).
func RunRemoteTrial(ctx context.Context, addr string, spec model.TrialSpec) (model.TrialResult, error) {
	body, err := json.Marshal(spec)
	if err != nil {
		return model.TrialResult{}, fmt.Errorf("agent: encode trial spec: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr+"/trial", bytes.NewReader(body))
	if err != nil {
		return model.TrialResult{}, fmt.Errorf("agent: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return model.TrialResult{}, fmt.Errorf("agent: request to %s: %w", addr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.TrialResult{}, fmt.Errorf("agent: %s returned status %d", addr, resp.StatusCode)
	}

	var res model.TrialResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return model.TrialResult{}, fmt.Errorf("agent: decode response: %w", err)
	}
	return res, nil
}
