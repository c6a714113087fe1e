package server

import (
	"context"
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/trace"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type CreateLotRequest struct {
	LotArea    float64 `json:"lot_area"`
	SpotLength float64 `json:"spot_length"`
	SpotWidth  float64 `json:"spot_width"`
}

type CreateLotResponse struct {
	LotArea    float64 `json:"lot_area"`
	SpotArea   float64 `json:"spot_area"`
	TotalSpots int     `json:"total_spots"`
}

// RunRequest carries either explicit plates or a count of random vehicles.
type RunRequest struct {
	Plates []string `json:"plates,omitempty"`
	Count  int      `json:"count,omitempty"`
}

type AttemptResponse struct {
	Plate   string `json:"plate"`
	Slot    int    `json:"slot"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type RunResponse struct {
	Parked   int               `json:"parked"`
	Full     bool              `json:"full"`
	Skipped  []string          `json:"skipped,omitempty"`
	Attempts []AttemptResponse `json:"attempts"`
	Mapping  map[string]string `json:"mapping"`
}

type ParkVehicleRequest struct {
	Plate string `json:"plate"`
	Slot  *int   `json:"slot"`
}

type SlotStatus struct {
	SlotNumber int    `json:"slot_number"`
	Plate      string `json:"plate,omitempty"`
	Occupied   bool   `json:"occupied"`
}

type StatusResponse struct {
	LotArea   float64      `json:"lot_area"`
	SpotArea  float64      `json:"spot_area"`
	Capacity  int          `json:"capacity"`
	Occupied  int          `json:"occupied"`
	Available int          `json:"available"`
	Full      bool         `json:"full"`
	Slots     []SlotStatus `json:"slots"`
}

type ExportResponse struct {
	Destinations []string `json:"destinations"`
	Entries      int      `json:"entries"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteFailure(ctx, w, status, message, nil)
}

// WriteFailure is WriteError with a payload, used for soft rejections that
// still carry a structured result.
func WriteFailure(ctx context.Context, w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}
