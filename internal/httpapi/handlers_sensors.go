package httpapi

import (
	"net/http"
	"time"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

type ingestReadingRequest struct {
	AssetID     string             `json:"asset_id" validate:"required,uuid4"`
	SensorID    string             `json:"sensor_id" validate:"required"`
	Time        time.Time          `json:"time" validate:"required"`
	Temperature *float64           `json:"temperature"`
	Humidity    *float64           `json:"humidity"`
	VibrationX  *float64           `json:"vibration_x"`
	VibrationY  *float64           `json:"vibration_y"`
	VibrationZ  *float64           `json:"vibration_z"`
	Pressure    *float64           `json:"pressure"`
	Power       *float64           `json:"power"`
	Custom      map[string]float64 `json:"custom"`
	Unit        string             `json:"unit"`
	Quality     string             `json:"quality"`
}

func (s *Server) handleIngestReading(w http.ResponseWriter, r *http.Request) {
	var req ingestReadingRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	assetID, err := domain.ParseID(req.AssetID)
	if err != nil {
		writeError(w, r, apierrors.ValidationError("asset_id", "must be a valid id"))
		return
	}
	reading := domain.SensorReading{
		Time:        req.Time,
		AssetID:     assetID,
		SensorID:    req.SensorID,
		Temperature: req.Temperature,
		Humidity:    req.Humidity,
		VibrationX:  req.VibrationX,
		VibrationY:  req.VibrationY,
		VibrationZ:  req.VibrationZ,
		Pressure:    req.Pressure,
		Power:       req.Power,
		Custom:      req.Custom,
		Unit:        req.Unit,
		Quality:     req.Quality,
	}
	alerts, err := s.sensorIngest.RecordReading(r.Context(), reading)
	if err != nil {
		writeError(w, r, err)
		return
	}
	for _, alert := range alerts {
		s.metrics.ObserveSensorAlert(string(alert.Severity))
	}
	writeSuccess(w, http.StatusAccepted, "reading recorded", map[string]any{"alerts_raised": len(alerts), "alerts": alerts})
}

func (s *Server) handleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "alertID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	alert, err := s.sensorAlerts.Acknowledge(r.Context(), id, claims.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "alert acknowledged", alert)
}

type resolveAlertRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) handleResolveAlert(w http.ResponseWriter, r *http.Request) {
	claims, err := requireClaims(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "alertID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req resolveAlertRequest
	_ = decodeAndValidate(r, &req)
	alert, err := s.sensorAlerts.Resolve(r.Context(), id, claims.Subject, req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "alert resolved", alert)
}
