package parking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/base-14/examples/go/random-parking-lot/internal/telemetry"
)

// InstrumentedLot wraps a Lot with spans and metrics and serializes access
// so one lot can be shared between request handlers.
type InstrumentedLot struct {
	mu        sync.Mutex
	lot       *Lot
	telemetry *telemetry.Provider

	// Metrics
	parkingAttempts   metric.Int64Counter
	lotFullEvents     metric.Int64Counter
	occupancyGauge    metric.Int64UpDownCounter
	totalSlotsGauge   metric.Int64UpDownCounter
	operationDuration metric.Float64Histogram
}

type Snapshot struct {
	LotArea    float64
	SpotArea   float64
	TotalSpots int
	Occupied   int
	Available  int
	Full       bool
	Slots      []Slot
}

func NewInstrumentedLot(ctx context.Context, lotArea, spotLength, spotWidth float64, tp *telemetry.Provider, opts ...LotOption) (*InstrumentedLot, error) {
	ctx, span := tp.Tracer().Start(ctx, "parking_lot.create",
		trace.WithAttributes(
			attribute.Float64("lot.area", lotArea),
			attribute.Float64("spot.length", spotLength),
			attribute.Float64("spot.width", spotWidth),
		))
	defer span.End()

	lot, err := NewLot(lotArea, spotLength, spotWidth, opts...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	meter := tp.Meter()

	parkingAttempts, err := meter.Int64Counter("parking_attempts_total",
		metric.WithDescription("Total number of placement attempts by outcome"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	lotFullEvents, err := meter.Int64Counter("lot_full_events_total",
		metric.WithDescription("Number of runs that stopped because the lot was full"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("parking_lot_occupancy",
		metric.WithDescription("Current number of occupied parking slots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	totalSlotsGauge, err := meter.Int64UpDownCounter("parking_lot_total_slots",
		metric.WithDescription("Total number of parking slots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("operation_duration_seconds",
		metric.WithDescription("Duration of parking lot operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	il := &InstrumentedLot{
		lot:               lot,
		telemetry:         tp,
		parkingAttempts:   parkingAttempts,
		lotFullEvents:     lotFullEvents,
		occupancyGauge:    occupancyGauge,
		totalSlotsGauge:   totalSlotsGauge,
		operationDuration: operationDuration,
	}

	totalSlotsGauge.Add(ctx, int64(lot.TotalSpots()))
	span.SetAttributes(
		attribute.Float64("spot.area", lot.SpotArea()),
		attribute.Int("lot.total_spots", lot.TotalSpots()),
	)

	return il, nil
}

func (il *InstrumentedLot) TotalSpots() int {
	return il.lot.TotalSpots()
}

func (il *InstrumentedLot) Run(ctx context.Context, vehicles []*Vehicle) Report {
	ctx, span := il.telemetry.Tracer().Start(ctx, "parking_lot.run",
		trace.WithAttributes(attribute.Int("vehicles.count", len(vehicles))))
	defer span.End()

	il.mu.Lock()
	defer il.mu.Unlock()

	start := time.Now()
	rep := Run(vehicles, il.lot)
	duration := time.Since(start).Seconds()

	for _, p := range rep.Attempts {
		il.recordAttempt(ctx, p)
		if p.Status == StatusLotFull {
			span.AddEvent("lot_full", trace.WithAttributes(
				attribute.String("vehicle.plate", p.Plate),
			))
		}
	}
	if rep.Full {
		il.lotFullEvents.Add(ctx, 1)
	}
	il.occupancyGauge.Add(ctx, int64(rep.Parked))

	span.SetAttributes(
		attribute.Int("run.parked", rep.Parked),
		attribute.Int("run.attempts", len(rep.Attempts)),
		attribute.Int("run.skipped", len(rep.Skipped)),
		attribute.Bool("lot.full", il.lot.IsFull()),
	)

	il.operationDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("operation", "run"),
		attribute.String("status", "success"),
	))

	return rep
}

func (il *InstrumentedLot) Park(ctx context.Context, v *Vehicle, slot int) Placement {
	ctx, span := il.telemetry.Tracer().Start(ctx, "parking_lot.park",
		trace.WithAttributes(
			attribute.String("vehicle.plate", v.Plate()),
			attribute.Int("slot.index", slot),
		))
	defer span.End()

	il.mu.Lock()
	defer il.mu.Unlock()

	start := time.Now()
	p := Park(v, il.lot, slot)
	duration := time.Since(start).Seconds()

	il.recordAttempt(ctx, p)
	if p.OK() {
		span.AddEvent("slot_allocated")
		il.occupancyGauge.Add(ctx, 1)
	} else {
		span.SetStatus(codes.Error, fmt.Sprintf("placement rejected: %s", p.Status))
	}

	il.operationDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("operation", "park"),
		attribute.String("status", p.Status.String()),
	))

	return p
}

func (il *InstrumentedLot) Status(ctx context.Context) Snapshot {
	ctx, span := il.telemetry.Tracer().Start(ctx, "parking_lot.get_status")
	defer span.End()

	il.mu.Lock()
	defer il.mu.Unlock()

	start := time.Now()
	st := Snapshot{
		LotArea:    il.lot.LotArea(),
		SpotArea:   il.lot.SpotArea(),
		TotalSpots: il.lot.TotalSpots(),
		Occupied:   il.lot.Occupied(),
		Available:  il.lot.Available(),
		Full:       il.lot.IsFull(),
		Slots:      il.lot.Slots(),
	}

	span.SetAttributes(
		attribute.Int("occupied_slots_count", st.Occupied),
		attribute.Int("total_capacity", st.TotalSpots),
	)

	il.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("operation", "get_status"),
		attribute.String("status", "success"),
	))

	return st
}

func (il *InstrumentedLot) Mapping(ctx context.Context) map[string]string {
	_, span := il.telemetry.Tracer().Start(ctx, "parking_lot.occupied_mapping")
	defer span.End()

	il.mu.Lock()
	defer il.mu.Unlock()

	mapping := il.lot.OccupiedMapping()
	span.SetAttributes(attribute.Int("mapping.entries", len(mapping)))
	return mapping
}

func (il *InstrumentedLot) recordAttempt(ctx context.Context, p Placement) {
	il.parkingAttempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", p.Status.String()),
	))
}
