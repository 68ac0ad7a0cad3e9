package httpapi

import (
	"net/http"

	"github.com/assetledger/backend/internal/domain"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, offset := paginationParams(r)
	list, err := s.notifications.List(r.Context(), claims.Subject, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", list)
}

func (s *Server) handleListUnreadNotifications(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.notifications.ListUnread(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", list)
}

func (s *Server) handleCountUnread(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	count, err := s.notifications.CountUnread(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", map[string]int{"count": count})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "notificationID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.notifications.MarkRead(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "marked read", nil)
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.notifications.MarkAllRead(r.Context(), claims.Subject); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "marked all read", nil)
}

func (s *Server) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "notificationID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.notifications.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "deleted", nil)
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	userID := ""
	if claims, ok := ClaimsFromContext(r); ok {
		userID = claims.Subject.String()
	}
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = userID
	}
	if sessionID == "" {
		sessionID = domain.NewID().String()
	}
	s.hub.ServeWS(w, r, sessionID, userID)
}
