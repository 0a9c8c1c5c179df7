package http

import (
	"net/http"

	"cantiere/internal/core"
)

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var c core.Category
	if err := decodeJSON(r, &c); err != nil {
		respondError(w, r, err)
		return
	}
	c.ProjectID = r.PathValue("id")
	created, err := s.taxonomy.CreateCategory(r.Context(), c)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, created)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.taxonomy.ListCategories(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, r, categories)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var c core.Category
	if err := decodeJSON(r, &c); err != nil {
		respondError(w, r, err)
		return
	}
	c.ID = r.PathValue("id")
	updated, err := s.taxonomy.UpdateCategory(r.Context(), c)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, updated)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.taxonomy.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateChangeOrder(w http.ResponseWriter, r *http.Request) {
	var c core.ChangeOrder
	if err := decodeJSON(r, &c); err != nil {
		respondError(w, r, err)
		return
	}
	c.ProjectID = r.PathValue("id")
	created, err := s.taxonomy.CreateChangeOrder(r.Context(), c)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, created)
}

func (s *Server) handleListChangeOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.taxonomy.ListChangeOrders(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, r, orders)
}

func (s *Server) handleUpdateChangeOrder(w http.ResponseWriter, r *http.Request) {
	var c core.ChangeOrder
	if err := decodeJSON(r, &c); err != nil {
		respondError(w, r, err)
		return
	}
	c.ID = r.PathValue("id")
	updated, err := s.taxonomy.UpdateChangeOrder(r.Context(), c)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, updated)
}

func (s *Server) handleDeleteChangeOrder(w http.ResponseWriter, r *http.Request) {
	if err := s.taxonomy.DeleteChangeOrder(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var e core.Employee
	if err := decodeJSON(r, &e); err != nil {
		respondError(w, r, err)
		return
	}
	created, err := s.taxonomy.CreateEmployee(r.Context(), e)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, created)
}

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := s.taxonomy.ListEmployees(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, r, employees)
}

func (s *Server) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var e core.Employee
	if err := decodeJSON(r, &e); err != nil {
		respondError(w, r, err)
		return
	}
	e.ID = r.PathValue("id")
	updated, err := s.taxonomy.UpdateEmployee(r.Context(), e)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, updated)
}

func (s *Server) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := s.taxonomy.DeleteEmployee(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
