package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/base-14/examples/go/random-parking-lot/internal/export"
	"github.com/base-14/examples/go/random-parking-lot/internal/logging"
	"github.com/base-14/examples/go/random-parking-lot/internal/parking"
	"github.com/base-14/examples/go/random-parking-lot/internal/telemetry"
)

type Config struct {
	In        io.Reader
	Out       io.Writer
	Telemetry *telemetry.Provider
	// Exporter is optional; without it the export command reports that
	// nothing is configured.
	Exporter export.Exporter
	Source   parking.Source
}

type Shell struct {
	lot       *parking.InstrumentedLot
	scanner   *bufio.Scanner
	out       io.Writer
	telemetry *telemetry.Provider
	exporter  export.Exporter
	src       parking.Source
}

func New(cfg Config) *Shell {
	src := cfg.Source
	if src == nil {
		src = parking.NewCryptoSource()
	}
	return &Shell{
		scanner:   bufio.NewScanner(cfg.In),
		out:       cfg.Out,
		telemetry: cfg.Telemetry,
		exporter:  cfg.Exporter,
		src:       src,
	}
}

func (s *Shell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	for ctx.Err() == nil && s.scanner.Scan() {
		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}

		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))

		s.processCommand(cmdCtx, input)
		cmdSpan.End()
	}

	span.AddEvent("shell_ended")
}

func (s *Shell) processCommand(ctx context.Context, input string) {
	parts := strings.Fields(input)
	command := parts[0]
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("command.name", command))

	switch command {
	case "create_lot":
		s.handleCreateLot(ctx, parts)
	case "park":
		s.handlePark(ctx, parts)
	case "park_at":
		s.handleParkAt(ctx, parts)
	case "generate":
		s.handleGenerate(ctx, parts)
	case "status":
		s.handleStatus(ctx)
	case "mapping":
		s.handleMapping(ctx)
	case "export":
		s.handleExport(ctx)
	case "help":
		s.printf("Commands: create_lot <area> <length> <width> | park <plate>... | park_at <plate> <slot> | generate <n> | status | mapping | export\n")
	default:
		s.printf("Unknown command: %s\n", command)
	}
}

func (s *Shell) handleCreateLot(ctx context.Context, parts []string) {
	if len(parts) != 4 {
		s.printf("Usage: create_lot <area> <length> <width>\n")
		return
	}

	dims := make([]float64, 3)
	for i, raw := range parts[1:] {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.printf("Invalid number: %s\n", raw)
			return
		}
		dims[i] = v
	}

	lot, err := parking.NewInstrumentedLot(ctx, dims[0], dims[1], dims[2], s.telemetry, parking.WithSource(s.src))
	if err != nil {
		logging.Warn(ctx, "lot creation rejected", "error", err)
		s.printf("Error: %s\n", err)
		return
	}

	s.lot = lot
	logging.Info(ctx, "lot created", "total_spots", lot.TotalSpots())
	s.printf("Created a parking lot with %d spots\n", lot.TotalSpots())
}

func (s *Shell) handlePark(ctx context.Context, parts []string) {
	if !s.requireLot() {
		return
	}
	if len(parts) < 2 {
		s.printf("Usage: park <plate>...\n")
		return
	}

	vehicles, err := parking.ParseVehicles(parts[1:])
	if err != nil {
		s.printf("Error: %s\n", err)
		return
	}
	s.printReport(s.lot.Run(ctx, vehicles))
}

func (s *Shell) handleParkAt(ctx context.Context, parts []string) {
	if !s.requireLot() {
		return
	}
	if len(parts) != 3 {
		s.printf("Usage: park_at <plate> <slot>\n")
		return
	}

	v, err := parking.NewVehicle(parts[1])
	if err != nil {
		s.printf("Error: %s\n", err)
		return
	}
	slot, err := strconv.Atoi(parts[2])
	if err != nil {
		s.printf("Invalid slot number: %s\n", parts[2])
		return
	}

	s.printf("%s\n", parking.DescribePlacement(s.lot.Park(ctx, v, slot)))
}

func (s *Shell) handleGenerate(ctx context.Context, parts []string) {
	if !s.requireLot() {
		return
	}
	if len(parts) != 2 {
		s.printf("Usage: generate <count>\n")
		return
	}

	n, err := strconv.Atoi(parts[1])
	if err != nil || n <= 0 {
		s.printf("Invalid count: %s\n", parts[1])
		return
	}
	s.printReport(s.lot.Run(ctx, parking.RandomVehicles(n, s.src)))
}

func (s *Shell) handleStatus(ctx context.Context) {
	if !s.requireLot() {
		return
	}

	st := s.lot.Status(ctx)
	if st.Occupied == 0 {
		s.printf("Parking lot is empty (%d spots)\n", st.TotalSpots)
		return
	}

	s.printf("Slot No.\tRegistration No\n")
	for _, slot := range st.Slots {
		if slot.IsOccupied() {
			s.printf("%d\t\t%s\n", slot.Index, slot.Vehicle.Plate())
		}
	}
	s.printf("Occupied %d of %d spots\n", st.Occupied, st.TotalSpots)
}

func (s *Shell) handleMapping(ctx context.Context) {
	if !s.requireLot() {
		return
	}

	data, err := export.Encode(s.lot.Mapping(ctx))
	if err != nil {
		s.printf("Error: %s\n", err)
		return
	}
	s.printf("%s", data)
}

func (s *Shell) handleExport(ctx context.Context) {
	if !s.requireLot() {
		return
	}
	if s.exporter == nil {
		s.printf("Export not configured\n")
		return
	}

	res, err := s.exporter.Export(ctx, s.lot.Mapping(ctx))
	if err != nil {
		logging.Error(ctx, "export failed", "error", err)
		s.printf("Error: %s\n", err)
		return
	}
	s.printf("%s\n", res)
}

func (s *Shell) requireLot() bool {
	if s.lot == nil {
		s.printf("Parking lot not created\n")
		return false
	}
	return true
}

func (s *Shell) printReport(rep parking.Report) {
	for _, p := range rep.Attempts {
		s.printf("%s\n", parking.DescribePlacement(p))
	}
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
