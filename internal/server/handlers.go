package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/base-14/examples/go/random-parking-lot/internal/export"
	"github.com/base-14/examples/go/random-parking-lot/internal/logging"
	"github.com/base-14/examples/go/random-parking-lot/internal/parking"
	"github.com/base-14/examples/go/random-parking-lot/internal/telemetry"
)

const maxRunCount = 10000

type Handler struct {
	mu          sync.RWMutex
	lot         *parking.InstrumentedLot
	telemetry   *telemetry.Provider
	exporter    export.Exporter
	newSource   func() parking.Source
	serviceName string
}

func NewHandler(opts Options) *Handler {
	newSource := opts.NewSource
	if newSource == nil {
		newSource = parking.NewCryptoSource
	}
	return &Handler{
		telemetry:   opts.Telemetry,
		exporter:    opts.Exporter,
		newSource:   newSource,
		serviceName: opts.ServiceName,
	}
}

func (h *Handler) currentLot() *parking.InstrumentedLot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lot
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
		Meta:    extractMeta(r.Context()),
	})
}

func (h *Handler) CreateLot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req CreateLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	lot, err := parking.NewInstrumentedLot(ctx, req.LotArea, req.SpotLength, req.SpotWidth, h.telemetry,
		parking.WithSource(h.newSource()))
	if err != nil {
		if errors.Is(err, parking.ErrInvalidConfiguration) {
			WriteError(ctx, w, http.StatusBadRequest, err.Error())
			return
		}
		logging.Error(ctx, "create lot failed", "error", err)
		WriteError(ctx, w, http.StatusInternalServerError, "Failed to create parking lot")
		return
	}

	h.mu.Lock()
	h.lot = lot
	h.mu.Unlock()

	st := lot.Status(ctx)
	logging.Info(ctx, "lot created", "total_spots", st.TotalSpots, "spot_area", st.SpotArea)

	WriteSuccess(ctx, w, "Parking lot created successfully", CreateLotResponse{
		LotArea:    st.LotArea,
		SpotArea:   st.SpotArea,
		TotalSpots: st.TotalSpots,
	})
}

func (h *Handler) RunVehicles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lot := h.currentLot()
	if lot == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Parking lot not created. Create parking lot first")
		return
	}

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var vehicles []*parking.Vehicle
	switch {
	case len(req.Plates) > 0:
		var err error
		vehicles, err = parking.ParseVehicles(req.Plates)
		if err != nil {
			WriteError(ctx, w, http.StatusBadRequest, err.Error())
			return
		}
	case req.Count > 0 && req.Count <= maxRunCount:
		vehicles = parking.RandomVehicles(req.Count, h.newSource())
	default:
		WriteError(ctx, w, http.StatusBadRequest, "Either plates or a count between 1 and 10000 is required")
		return
	}

	rep := lot.Run(ctx, vehicles)
	if rep.Full {
		logging.Info(ctx, "lot full", "skipped", len(rep.Skipped))
	}

	attempts := make([]AttemptResponse, 0, len(rep.Attempts))
	for _, p := range rep.Attempts {
		attempts = append(attempts, attemptResponse(p))
	}

	WriteSuccess(ctx, w, "Vehicles processed", RunResponse{
		Parked:   rep.Parked,
		Full:     rep.Full,
		Skipped:  rep.Skipped,
		Attempts: attempts,
		Mapping:  rep.Mapping,
	})
}

func (h *Handler) ParkVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lot := h.currentLot()
	if lot == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Parking lot not created. Create parking lot first")
		return
	}

	var req ParkVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Slot == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Slot is required")
		return
	}

	v, err := parking.NewVehicle(req.Plate)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	p := lot.Park(ctx, v, *req.Slot)
	if !p.OK() {
		WriteFailure(ctx, w, http.StatusConflict, parking.DescribePlacement(p), attemptResponse(p))
		return
	}

	WriteSuccess(ctx, w, "Vehicle parked successfully", attemptResponse(p))
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lot := h.currentLot()
	if lot == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Parking lot not created. Create parking lot first")
		return
	}

	st := lot.Status(ctx)
	slots := make([]SlotStatus, 0, len(st.Slots))
	for _, slot := range st.Slots {
		status := SlotStatus{SlotNumber: slot.Index, Occupied: slot.IsOccupied()}
		if slot.IsOccupied() {
			status.Plate = slot.Vehicle.Plate()
		}
		slots = append(slots, status)
	}

	WriteSuccess(ctx, w, "Status retrieved successfully", StatusResponse{
		LotArea:   st.LotArea,
		SpotArea:  st.SpotArea,
		Capacity:  st.TotalSpots,
		Occupied:  st.Occupied,
		Available: st.Available,
		Full:      st.Full,
		Slots:     slots,
	})
}

func (h *Handler) GetMapping(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lot := h.currentLot()
	if lot == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Parking lot not created. Create parking lot first")
		return
	}

	WriteSuccess(ctx, w, "Mapping retrieved successfully", lot.Mapping(ctx))
}

func (h *Handler) ExportMapping(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lot := h.currentLot()
	if lot == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Parking lot not created. Create parking lot first")
		return
	}
	if h.exporter == nil {
		WriteError(ctx, w, http.StatusServiceUnavailable, "Export not configured")
		return
	}

	res, err := h.exporter.Export(ctx, lot.Mapping(ctx))
	if err != nil {
		logging.Error(ctx, "export failed", "error", err)
		WriteError(ctx, w, http.StatusBadGateway, "Export failed")
		return
	}

	logging.Info(ctx, res.String())
	WriteSuccess(ctx, w, "Mapping exported", ExportResponse{
		Destinations: res.Destinations,
		Entries:      res.Entries,
	})
}

func attemptResponse(p parking.Placement) AttemptResponse {
	return AttemptResponse{
		Plate:   p.Plate,
		Slot:    p.Slot,
		Status:  p.Status.String(),
		Message: parking.DescribePlacement(p),
	}
}
