// Package httpapi wires the chi router, authentication/RBAC middleware,
// and the representative HTTP surface for SPEC_FULL §6's resource
// operations. Every response uses the success/error envelope shapes §6
// specifies.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/assetledger/backend/internal/apierrors"
)

type successEnvelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errorEnvelope struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error"`
	Code    apierrors.ErrorCode    `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, successEnvelope{Success: true, Message: message, Data: data})
}

// writeError is the rbac.ErrorWriter and the handler-layer error path: any
// error gets translated to a ServiceError so untyped errors still produce
// a well-formed envelope instead of leaking internals.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	se := apierrors.As(err)
	if se == nil {
		se = apierrors.Internal("internal", err)
	}
	writeJSON(w, se.HTTPStatus, errorEnvelope{Success: false, Error: se.Message, Code: se.Code, Details: se.Details})
}
