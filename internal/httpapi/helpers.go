package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
	"github.com/assetledger/backend/internal/validation"
)

func pathID(r *http.Request, param string) (domain.ID, error) {
	raw := chi.URLParam(r, param)
	id, err := domain.ParseID(raw)
	if err != nil {
		return domain.ID{}, apierrors.BadRequest("invalid " + param)
	}
	return id, nil
}

func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apierrors.BadRequest("malformed request body")
	}
	if err := validation.Struct(dst); err != nil {
		return err
	}
	return nil
}

func requireClaims(r *http.Request) (domain.UserClaims, error) {
	claims, ok := ClaimsFromContext(r)
	if !ok {
		return domain.UserClaims{}, apierrors.Unauthorized("authentication required")
	}
	return claims, nil
}

func paginationParams(r *http.Request) (limit, offset int) {
	limit, offset = 50, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
