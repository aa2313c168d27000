package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/BAWSA3/brandos/internal/conductor"
	"github.com/BAWSA3/brandos/internal/types"
)

// CreateReportResponse is returned when a run is accepted.
type CreateReportResponse struct {
	Handle string `json:"handle"`
	RunID  string `json:"run_id"`
	State  string `json:"state"`
}

// StatusResponse is returned while a run is still in flight.
type StatusResponse struct {
	Handle string `json:"handle"`
	Status string `json:"status"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleCreateReport starts an analysis run for the handle. A fresh
// cached report is returned immediately; otherwise the run proceeds in
// the background and the response is 202.
func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.parseHandle(w, r)
	if !ok {
		return
	}

	if report, err := s.conductor.GetReport(r.Context(), handle); err == nil {
		s.jsonResponse(w, http.StatusOK, report)
		return
	}

	// Detach from the request context so the run survives the client
	// disconnecting after the 202.
	run := s.conductor.Start(context.Background(), handle)
	s.jsonResponse(w, http.StatusAccepted, CreateReportResponse{
		Handle: string(handle),
		RunID:  run.ID.String(),
		State:  string(run.State()),
	})
}

// handleGetReport resolves a handle to its latest report. Misses fall
// through to the persistence store before reporting 404.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.parseHandle(w, r)
	if !ok {
		return
	}

	report, err := s.conductor.GetReport(r.Context(), handle)
	switch {
	case err == nil:
		s.jsonResponse(w, http.StatusOK, report)
	case errors.Is(err, conductor.ErrInProgress):
		s.jsonResponse(w, http.StatusAccepted, StatusResponse{
			Handle: string(handle),
			Status: "in_progress",
		})
	case errors.Is(err, conductor.ErrNotFound):
		if s.db != nil {
			if stored, dbErr := s.db.LatestReport(r.Context(), handle); dbErr == nil && stored != nil {
				s.jsonResponse(w, http.StatusOK, stored)
				return
			}
		}
		s.errorResponse(w, http.StatusNotFound, "no report for handle "+string(handle))
	default:
		s.logger.Error("report lookup failed", zap.String("handle", string(handle)), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "report lookup failed")
	}
}

// handleStreamReport streams run events as SSE. It attaches to the
// in-flight run for the handle, starting one if needed, and holds the
// connection open until the run finishes or the client goes away.
func (s *Server) handleStreamReport(w http.ResponseWriter, r *http.Request) {
	handle, ok := s.parseHandle(w, r)
	if !ok {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	if report, err := s.conductor.GetReport(r.Context(), handle); err == nil {
		sse.WriteEvent("complete", report)
		return
	}

	events, cancel, active := s.conductor.Subscribe(handle)
	if !active {
		run := s.conductor.Start(context.Background(), handle)
		events, cancel, active = s.conductor.Subscribe(handle)
		if !active {
			// The run finished between Start and Subscribe.
			if report, err := run.Report(); err == nil {
				sse.WriteEvent("complete", report)
			} else {
				sse.WriteError(err.Error())
			}
			return
		}
	}
	defer cancel()

	keepAlive := s.newKeepAliveTicker()
	defer keepAlive.Stop()

	for {
		select {
		case event, open := <-events:
			if !open {
				return
			}
			if err := sse.WriteEvent(string(event.Type), event); err != nil {
				return
			}
		case <-keepAlive.C:
			if err := sse.WriteComment("keep-alive"); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) parseHandle(w http.ResponseWriter, r *http.Request) (types.Handle, bool) {
	handle, err := types.ParseHandle(r.PathValue("handle"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid handle: "+err.Error())
		return "", false
	}
	return handle, true
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, ErrorResponse{Error: message})
}
