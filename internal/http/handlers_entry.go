package http

import (
	"net/http"

	"cantiere/internal/core"
)

// Cost entry handlers. Creates take the project from the URL path; updates
// take the entry ID from the path and replace the row with the body.

func (s *Server) handleCreateTimesheet(w http.ResponseWriter, r *http.Request) {
	var t core.Timesheet
	if err := decodeJSON(r, &t); err != nil {
		respondError(w, r, err)
		return
	}
	t.ProjectID = r.PathValue("id")
	created, err := s.entries.CreateTimesheet(r.Context(), t)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, created)
}

func (s *Server) handleListTimesheets(w http.ResponseWriter, r *http.Request) {
	sheets, err := s.entries.ListTimesheets(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, r, sheets)
}

func (s *Server) handleUpdateTimesheet(w http.ResponseWriter, r *http.Request) {
	var t core.Timesheet
	if err := decodeJSON(r, &t); err != nil {
		respondError(w, r, err)
		return
	}
	t.ID = r.PathValue("id")
	updated, err := s.entries.UpdateTimesheet(r.Context(), t)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, updated)
}

func (s *Server) handleDeleteTimesheet(w http.ResponseWriter, r *http.Request) {
	if err := s.entries.DeleteTimesheet(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateEquipmentLog(w http.ResponseWriter, r *http.Request) {
	var e core.EquipmentLog
	if err := decodeJSON(r, &e); err != nil {
		respondError(w, r, err)
		return
	}
	e.ProjectID = r.PathValue("id")
	created, err := s.entries.CreateEquipmentLog(r.Context(), e)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, created)
}

func (s *Server) handleListEquipmentLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.entries.ListEquipmentLogs(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, r, logs)
}

func (s *Server) handleUpdateEquipmentLog(w http.ResponseWriter, r *http.Request) {
	var e core.EquipmentLog
	if err := decodeJSON(r, &e); err != nil {
		respondError(w, r, err)
		return
	}
	e.ID = r.PathValue("id")
	updated, err := s.entries.UpdateEquipmentLog(r.Context(), e)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, updated)
}

func (s *Server) handleDeleteEquipmentLog(w http.ResponseWriter, r *http.Request) {
	if err := s.entries.DeleteEquipmentLog(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateSubcontractorEntry(w http.ResponseWriter, r *http.Request) {
	var e core.SubcontractorEntry
	if err := decodeJSON(r, &e); err != nil {
		respondError(w, r, err)
		return
	}
	e.ProjectID = r.PathValue("id")
	created, err := s.entries.CreateSubcontractorEntry(r.Context(), e)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, created)
}

func (s *Server) handleListSubcontractorEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.entries.ListSubcontractorEntries(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, r, entries)
}

func (s *Server) handleUpdateSubcontractorEntry(w http.ResponseWriter, r *http.Request) {
	var e core.SubcontractorEntry
	if err := decodeJSON(r, &e); err != nil {
		respondError(w, r, err)
		return
	}
	e.ID = r.PathValue("id")
	updated, err := s.entries.UpdateSubcontractorEntry(r.Context(), e)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, updated)
}

func (s *Server) handleDeleteSubcontractorEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.entries.DeleteSubcontractorEntry(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateOverheadEntry(w http.ResponseWriter, r *http.Request) {
	var e core.OverheadEntry
	if err := decodeJSON(r, &e); err != nil {
		respondError(w, r, err)
		return
	}
	e.ProjectID = r.PathValue("id")
	created, err := s.entries.CreateOverheadEntry(r.Context(), e)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, created)
}

func (s *Server) handleListOverheadEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.entries.ListOverheadEntries(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, r, entries)
}

func (s *Server) handleUpdateOverheadEntry(w http.ResponseWriter, r *http.Request) {
	var e core.OverheadEntry
	if err := decodeJSON(r, &e); err != nil {
		respondError(w, r, err)
		return
	}
	e.ID = r.PathValue("id")
	updated, err := s.entries.UpdateOverheadEntry(r.Context(), e)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, updated)
}

func (s *Server) handleDeleteOverheadEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.entries.DeleteOverheadEntry(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCreateReport stores a progress report together with its materials.
func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var report core.ProgressReport
	if err := decodeJSON(r, &report); err != nil {
		respondError(w, r, err)
		return
	}
	report.ProjectID = r.PathValue("id")
	created, err := s.entries.CreateProgressReport(r.Context(), report)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, created)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.entries.ListProgressReports(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, r, reports)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	if err := s.entries.DeleteProgressReport(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMaterials(w http.ResponseWriter, r *http.Request) {
	materials, err := s.entries.ListMaterials(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, r, materials)
}
