package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListAuditLog(w http.ResponseWriter, r *http.Request) {
	resourceType := chi.URLParam(r, "resourceType")
	id, err := pathID(r, "resourceID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, offset := paginationParams(r)
	logs, err := s.auditRds.ListByResource(r.Context(), resourceType, id, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", logs)
}
