package http

import (
	"fmt"
	"net/http"
	"time"

	"cantiere/internal/core"
	"cantiere/internal/services"
)

type connectRequest struct {
	GmailEmail string `json:"gmailEmail"`
}

// handleConnectGmail registers a mailbox for receipt ingestion. A previous
// active connection is superseded; only a concurrent connect answers 409.
func (s *Server) handleConnectGmail(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	conn, err := s.connections.Connect(r.Context(), req.GmailEmail)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, conn)
}

func (s *Server) handleActiveConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := s.connections.Active(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, conn)
}

func (s *Server) handleListConnections(w http.ResponseWriter, r *http.Request) {
	conns, err := s.connections.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, r, conns)
}

func (s *Server) handleDisconnectGmail(w http.ResponseWriter, r *http.Request) {
	if err := s.connections.Disconnect(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type scanRequest struct {
	ProjectID string    `json:"projectId"`
	Since     time.Time `json:"since"`
}

type scanAccepted struct {
	Status       string    `json:"status"`
	ConnectionID string    `json:"connectionId"`
	ProjectID    string    `json:"projectId"`
	Since        time.Time `json:"since"`
}

// handleScanRequest queues an inbox scan against the active connection and
// answers as soon as the job is dispatched. When the request carries no
// cutoff the scan resumes from the last sync, or the past day on a fresh
// connection.
func (s *Server) handleScanRequest(w http.ResponseWriter, r *http.Request) {
	if s.scans == nil {
		respondJSON(w, r, http.StatusServiceUnavailable, errorBody{Error: "scanning not configured"})
		return
	}

	var req scanRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.ProjectID == "" {
		respondError(w, r, fmt.Errorf("%w: projectId is required", core.ErrValidation))
		return
	}
	if _, err := s.projects.GetProject(r.Context(), req.ProjectID); err != nil {
		respondError(w, r, err)
		return
	}
	conn, err := s.connections.Active(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	since := req.Since
	if since.IsZero() {
		since = conn.LastSyncAt
	}
	if since.IsZero() {
		since = time.Now().Add(-24 * time.Hour)
	}

	job := services.ScanJob{ConnectionID: conn.ID, ProjectID: req.ProjectID, Since: since}
	if err := s.scans.DispatchScan(r.Context(), job); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusAccepted, scanAccepted{
		Status:       "accepted",
		ConnectionID: conn.ID,
		ProjectID:    req.ProjectID,
		Since:        since,
	})
}
