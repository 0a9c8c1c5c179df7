package http

import (
	"net/http"

	"cantiere/internal/core"
)

// handleUploadReceipt accepts a multipart upload, stores the file and runs
// document analysis before answering, so the response already carries the
// extraction when the analyzer could read the image.
func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	filename, data, err := readUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	receipt, err := s.receipts.Upload(r.Context(), r.PathValue("id"), filename, data)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, receipt)
}

func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := s.receipts.List(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, r, receipts)
}

func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.receipts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, receipt)
}

func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	if err := s.receipts.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type linkRequest struct {
	EntryType core.EntryType `json:"entryType"`
	EntryID   string         `json:"entryId"`
}

// handleLinkReceipt attaches the receipt to a cost entry as documentation.
// Linking the same pair twice answers 409.
func (s *Server) handleLinkReceipt(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	link, err := s.receipts.Link(r.Context(), r.PathValue("id"), req.EntryType, req.EntryID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, link)
}

func (s *Server) handleReceiptLinks(w http.ResponseWriter, r *http.Request) {
	links, err := s.receipts.Links(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, r, links)
}

func (s *Server) handleUnlinkReceipt(w http.ResponseWriter, r *http.Request) {
	if err := s.receipts.Unlink(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReprocessReceipt reruns document analysis over the stored file,
// replacing the previous extraction.
func (s *Server) handleReprocessReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.receipts.Reprocess(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, receipt)
}
