package httpapi

import "net/http"

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	items, err := s.lookups.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", items)
}

func (s *Server) handleListLocations(w http.ResponseWriter, r *http.Request) {
	items, err := s.lookups.ListLocations(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", items)
}

func (s *Server) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	items, err := s.lookups.ListDepartments(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", items)
}

func (s *Server) handleListVendors(w http.ResponseWriter, r *http.Request) {
	items, err := s.lookups.ListVendors(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", items)
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	items, err := s.lookups.ListClients(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", items)
}
