package container

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/icdstack/terminal/internal/clock"
	"github.com/icdstack/terminal/internal/domain"
	"github.com/icdstack/terminal/internal/eventbus"
	"github.com/icdstack/terminal/internal/facility"
)

type fixture struct {
	engine     *Engine
	manager    *facility.Manager
	bus        *eventbus.Bus
	recorder   *eventRecorder
	facilityID string
}

type eventRecorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *eventRecorder) record(e domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) types(pattern string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if domain.MatchesPattern(e.Type, pattern) {
			out = append(out, e.Type)
		}
	}
	return out
}

func (r *eventRecorder) last() (domain.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return domain.Event{}, false
	}
	return r.events[len(r.events)-1], true
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.NewFixed(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	bus := eventbus.New(eventbus.WithLogger(log), eventbus.WithClock(clk))
	t.Cleanup(bus.Dispose)

	m := facility.NewManager(clk, log)
	f := m.AddFacility("t-1", "ICD1", "Main Depot", 5000)
	gen := m.AddZone(f.ID, "GEN", "General", domain.ZoneGeneral, 2)
	ref := m.AddZone(f.ID, "REF", "Reefer", domain.ZoneReefer, 1)
	if _, err := m.AddBlock(gen.ID, facility.BlockSpec{Code: "A", Rows: 2, SlotsPerRow: 2}); err != nil {
		t.Fatalf("add block A: %v", err)
	}
	if _, err := m.AddBlock(gen.ID, facility.BlockSpec{
		Code: "S", Rows: 1, SlotsPerRow: 1,
		AllowedSizes: []domain.ContainerSize{domain.Size20},
	}); err != nil {
		t.Fatalf("add block S: %v", err)
	}
	if _, err := m.AddBlock(ref.ID, facility.BlockSpec{Code: "R", Rows: 1, SlotsPerRow: 1}); err != nil {
		t.Fatalf("add block R: %v", err)
	}
	m.BindBus(bus)

	rec := &eventRecorder{}
	bus.Subscribe("*", rec.record)

	engine := New(bus, m, WithLogger(log), WithClock(clk))
	return &fixture{engine: engine, manager: m, bus: bus, recorder: rec, facilityID: f.ID}
}

func (f *fixture) register(t *testing.T, number, isoType string) domain.Container {
	t.Helper()
	c, err := f.engine.RegisterContainer(context.Background(), RegisterInput{
		TenantID:        "t-1",
		FacilityID:      f.facilityID,
		ContainerNumber: number,
		ISOType:         isoType,
		Owner:           "MAEU",
	})
	if err != nil {
		t.Fatalf("register %s: %v", number, err)
	}
	return c
}

func TestRegisterContainer(t *testing.T) {
	f := newFixture(t)

	c := f.register(t, "csqu3054383", "22G1")
	if c.ContainerNumber != "CSQU3054383" {
		t.Errorf("number = %s, want uppercased CSQU3054383", c.ContainerNumber)
	}
	if c.Status != domain.StatusAnnounced {
		t.Errorf("status = %s, want announced", c.Status)
	}
	if c.Size != domain.Size20 || c.Kind != domain.KindDry {
		t.Errorf("decoded type = %s/%s, want 20/dry", c.Size, c.Kind)
	}
	if c.TareWeightKg != 2200 || c.MaxPayloadKg != 28000 {
		t.Errorf("default weights = %f/%f", c.TareWeightKg, c.MaxPayloadKg)
	}
	if c.CustomsStatus != domain.CustomsPending {
		t.Errorf("customs = %s, want pending", c.CustomsStatus)
	}
	if c.Reefer != nil {
		t.Error("dry container should have no reefer info")
	}

	if got := f.recorder.types(domain.EventContainerRegistered); len(got) != 1 {
		t.Errorf("expected one registered event, got %d", len(got))
	}
}

func TestRegisterContainerRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.RegisterContainer(ctx, RegisterInput{
		TenantID: "t-1", FacilityID: f.facilityID,
		ContainerNumber: "MSCU1234567", ISOType: "22G1",
	})
	if !domain.IsCode(err, domain.CodeInvalidContainerNumber) {
		t.Fatalf("expected INVALID_CONTAINER_NUMBER, got %v", err)
	}

	f.register(t, "CSQU3054383", "22G1")
	_, err = f.engine.RegisterContainer(ctx, RegisterInput{
		TenantID: "t-1", FacilityID: f.facilityID,
		ContainerNumber: "CSQU3054383", ISOType: "22G1",
	})
	if !domain.IsCode(err, domain.CodeDuplicateContainer) {
		t.Fatalf("expected DUPLICATE_CONTAINER, got %v", err)
	}

	// Same number under another tenant is fine.
	if _, err := f.engine.RegisterContainer(ctx, RegisterInput{
		TenantID: "t-2", FacilityID: f.facilityID,
		ContainerNumber: "CSQU3054383", ISOType: "22G1",
	}); err != nil {
		t.Fatalf("register under second tenant: %v", err)
	}
}

func TestReeferRegistration(t *testing.T) {
	f := newFixture(t)
	setTemp := -18.0

	c, err := f.engine.RegisterContainer(context.Background(), RegisterInput{
		TenantID: "t-1", FacilityID: f.facilityID,
		ContainerNumber: "MSCU1234566", ISOType: "45R1",
		ReeferSetTemp: &setTemp,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if c.Kind != domain.KindReefer || !c.HighCube || c.Size != domain.Size40 {
		t.Errorf("decoded type = %+v", c)
	}
	if c.Reefer == nil || c.Reefer.SetTemperature != setTemp {
		t.Fatalf("reefer info = %+v", c.Reefer)
	}
}

func TestFullLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.register(t, "CSQU3054383", "22G1")

	c, err := f.engine.RecordArrival(ctx, c.ID, "op-1")
	if err != nil {
		t.Fatalf("arrival: %v", err)
	}
	if c.Status != domain.StatusArrived {
		t.Fatalf("status = %s, want arrived", c.Status)
	}

	c, err = f.engine.GateIn(ctx, c.ID, GateInfo{
		GateNumber: "G1", TruckNumber: "KA-01-1234",
		SealNumbers: []string{"SEAL-9"}, OperatorID: "op-1",
	})
	if err != nil {
		t.Fatalf("gate in: %v", err)
	}
	if c.Status != domain.StatusGatedIn {
		t.Fatalf("status = %s, want gated_in", c.Status)
	}
	if c.GateInTime == nil || c.FreeTimeExpiry == nil {
		t.Fatal("expected gate-in time and free time expiry to be stamped")
	}
	if want := c.GateInTime.Add(5 * 24 * time.Hour); !c.FreeTimeExpiry.Equal(want) {
		t.Errorf("free time expiry = %v, want %v", c.FreeTimeExpiry, want)
	}
	if len(c.SealNumbers) != 1 || c.SealNumbers[0] != "SEAL-9" {
		t.Errorf("seal numbers = %v", c.SealNumbers)
	}

	c, err = f.engine.Ground(ctx, c.ID, "A-01-01", MoveInfo{EquipmentID: "RS-1", OperatorID: "op-2"})
	if err != nil {
		t.Fatalf("ground: %v", err)
	}
	if c.Status != domain.StatusGrounded {
		t.Fatalf("status = %s, want grounded", c.Status)
	}
	if c.CurrentLocation == nil || c.CurrentLocation.Barcode != "A-01-01" || c.CurrentLocation.Tier != 1 {
		t.Fatalf("location = %+v", c.CurrentLocation)
	}
	slot, _ := f.manager.Slot("A-01-01")
	if slot.CurrentTiers != 1 {
		t.Fatalf("topology not updated after grounding, tiers = %d", slot.CurrentTiers)
	}

	c, err = f.engine.Pick(ctx, c.ID, MoveInfo{EquipmentID: "RS-1", OperatorID: "op-2"})
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if c.Status != domain.StatusPicked || c.CurrentLocation != nil {
		t.Fatalf("after pick: status = %s, location = %v", c.Status, c.CurrentLocation)
	}
	if len(c.PreviousLocations) != 1 || c.PreviousLocations[0].Barcode != "A-01-01" {
		t.Fatalf("previous locations = %v", c.PreviousLocations)
	}
	slot, _ = f.manager.Slot("A-01-01")
	if slot.CurrentTiers != 0 {
		t.Fatalf("topology not updated after pick, tiers = %d", slot.CurrentTiers)
	}

	c, err = f.engine.GateOut(ctx, c.ID, GateInfo{GateNumber: "G2", OperatorID: "op-1"})
	if err != nil {
		t.Fatalf("gate out: %v", err)
	}
	if c.Status != domain.StatusGatedOut || c.GateOutTime == nil {
		t.Fatalf("after gate out: %+v", c)
	}

	// One movement per transition, in order.
	wantMoves := []domain.MovementType{
		domain.MoveArrival, domain.MoveGateIn, domain.MoveGround,
		domain.MovePick, domain.MoveGateOut,
	}
	if len(c.Movements) != len(wantMoves) {
		t.Fatalf("expected %d movements, got %d", len(wantMoves), len(c.Movements))
	}
	for i, want := range wantMoves {
		if c.Movements[i].Type != want {
			t.Errorf("movement %d = %s, want %s", i, c.Movements[i].Type, want)
		}
	}

	// One container event per transition, in order.
	wantEvents := []string{
		domain.EventContainerRegistered, domain.EventContainerArrived,
		domain.EventContainerGatedIn, domain.EventContainerGrounded,
		domain.EventContainerPicked, domain.EventContainerGatedOut,
	}
	got := f.recorder.types("container.*")
	if len(got) != len(wantEvents) {
		t.Fatalf("expected %d container events, got %v", len(wantEvents), got)
	}
	for i, want := range wantEvents {
		if got[i] != want {
			t.Errorf("event %d = %s, want %s", i, got[i], want)
		}
	}
}

func TestGateInFromAnnounced(t *testing.T) {
	f := newFixture(t)
	c := f.register(t, "CSQU3054383", "22G1")

	// Arrival recording is optional; gate-in straight from announced works.
	c, err := f.engine.GateIn(context.Background(), c.ID, GateInfo{OperatorID: "op-1"})
	if err != nil {
		t.Fatalf("gate in: %v", err)
	}
	if c.Status != domain.StatusGatedIn {
		t.Fatalf("status = %s, want gated_in", c.Status)
	}
}

func TestInvalidTransitionLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.register(t, "CSQU3054383", "22G1")

	_, err := f.engine.Ground(ctx, c.ID, "A-01-01", MoveInfo{})
	if !domain.IsCode(err, domain.CodeInvalidTransition) {
		t.Fatalf("expected INVALID_STATUS_TRANSITION, got %v", err)
	}

	got, err := f.engine.Container(c.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.Status != domain.StatusAnnounced || len(got.Movements) != 0 {
		t.Fatalf("state changed by failed transition: %+v", got)
	}

	if _, err := f.engine.Pick(ctx, "missing", MoveInfo{}); !domain.IsCode(err, domain.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestGroundValidatesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.register(t, "CSQU3054383", "42G1")
	if _, err := f.engine.GateIn(ctx, c.ID, GateInfo{}); err != nil {
		t.Fatalf("gate in: %v", err)
	}

	if _, err := f.engine.Ground(ctx, c.ID, "X-99-99", MoveInfo{}); !domain.IsCode(err, domain.CodeSlotUnavailable) {
		t.Fatalf("expected SLOT_UNAVAILABLE for unknown barcode, got %v", err)
	}

	// Block S only takes 20ft boxes.
	if _, err := f.engine.Ground(ctx, c.ID, "S-01-01", MoveInfo{}); !domain.IsCode(err, domain.CodeLOAExceeded) {
		t.Fatalf("expected LOA_EXCEEDED, got %v", err)
	}

	got, _ := f.engine.Container(c.ID)
	if got.Status != domain.StatusGatedIn {
		t.Fatalf("status = %s after failed grounding, want gated_in", got.Status)
	}
}

func TestGroundReeferNeedsReeferBlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.register(t, "MSCU1234566", "22R1")
	if _, err := f.engine.GateIn(ctx, c.ID, GateInfo{}); err != nil {
		t.Fatalf("gate in: %v", err)
	}

	if _, err := f.engine.Ground(ctx, c.ID, "A-01-01", MoveInfo{}); !domain.IsCode(err, domain.CodeSlotUnavailable) {
		t.Fatalf("expected SLOT_UNAVAILABLE for reefer in general block, got %v", err)
	}
	if _, err := f.engine.Ground(ctx, c.ID, "R-01-01", MoveInfo{}); err != nil {
		t.Fatalf("ground in reefer block: %v", err)
	}
}

func TestGroundStacksOnSecondTier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.register(t, "CSQU3054383", "22G1")
	second := f.register(t, "MSCU1234566", "22G1")
	for _, c := range []domain.Container{first, second} {
		if _, err := f.engine.GateIn(ctx, c.ID, GateInfo{}); err != nil {
			t.Fatalf("gate in: %v", err)
		}
	}

	if _, err := f.engine.Ground(ctx, first.ID, "A-01-01", MoveInfo{}); err != nil {
		t.Fatalf("ground first: %v", err)
	}
	got, err := f.engine.Ground(ctx, second.ID, "A-01-01", MoveInfo{})
	if err != nil {
		t.Fatalf("ground second: %v", err)
	}
	if got.CurrentLocation.Tier != 2 {
		t.Fatalf("second container tier = %d, want 2", got.CurrentLocation.Tier)
	}

	// Block A stacks two high; a third container is refused.
	third := f.register(t, "TEMU1234565", "22G1")
	if _, err := f.engine.GateIn(ctx, third.ID, GateInfo{}); err != nil {
		t.Fatalf("gate in third: %v", err)
	}
	if _, err := f.engine.Ground(ctx, third.ID, "A-01-01", MoveInfo{}); !domain.IsCode(err, domain.CodeSlotUnavailable) {
		t.Fatalf("expected SLOT_UNAVAILABLE on full slot, got %v", err)
	}
}

func TestRegroundAfterPick(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.register(t, "CSQU3054383", "22G1")
	if _, err := f.engine.GateIn(ctx, c.ID, GateInfo{}); err != nil {
		t.Fatalf("gate in: %v", err)
	}
	if _, err := f.engine.Ground(ctx, c.ID, "A-01-01", MoveInfo{}); err != nil {
		t.Fatalf("ground: %v", err)
	}
	if _, err := f.engine.Pick(ctx, c.ID, MoveInfo{}); err != nil {
		t.Fatalf("pick: %v", err)
	}

	got, err := f.engine.Ground(ctx, c.ID, "A-02-01", MoveInfo{})
	if err != nil {
		t.Fatalf("reground: %v", err)
	}
	if got.CurrentLocation.Barcode != "A-02-01" {
		t.Fatalf("location = %s, want A-02-01", got.CurrentLocation.Barcode)
	}
	last := got.Movements[len(got.Movements)-1]
	if last.From.Slot == nil || last.From.Slot.Barcode != "A-01-01" {
		t.Fatalf("restack movement from = %+v, want previous slot", last.From)
	}
}

func TestHoldBlocksGateOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.register(t, "CSQU3054383", "22G1")
	if _, err := f.engine.GateIn(ctx, c.ID, GateInfo{}); err != nil {
		t.Fatalf("gate in: %v", err)
	}
	if _, err := f.engine.Ground(ctx, c.ID, "A-01-01", MoveInfo{}); err != nil {
		t.Fatalf("ground: %v", err)
	}
	if _, err := f.engine.Pick(ctx, c.ID, MoveInfo{}); err != nil {
		t.Fatalf("pick: %v", err)
	}

	held, err := f.engine.PlaceHold(ctx, c.ID, HoldInput{
		Type: domain.HoldCustoms, Reason: "BOE verification", PlacedBy: "officer-1",
	})
	if err != nil {
		t.Fatalf("place hold: %v", err)
	}
	if held.Status != domain.StatusOnHold || held.PreHoldStatus != domain.StatusPicked {
		t.Fatalf("after hold: status = %s, preHold = %s", held.Status, held.PreHoldStatus)
	}
	if held.Holds[0].Priority != domain.HoldPriorityMedium {
		t.Errorf("default priority = %s, want medium", held.Holds[0].Priority)
	}

	if _, err := f.engine.GateOut(ctx, c.ID, GateInfo{}); !domain.IsCode(err, domain.CodeInvalidTransition) {
		t.Fatalf("expected gate-out to be blocked on hold, got %v", err)
	}

	released, err := f.engine.ReleaseHold(ctx, c.ID, held.Holds[0].ID, "officer-2")
	if err != nil {
		t.Fatalf("release hold: %v", err)
	}
	if released.Status != domain.StatusPicked || released.PreHoldStatus != "" {
		t.Fatalf("after release: status = %s, preHold = %q", released.Status, released.PreHoldStatus)
	}
	if len(released.Holds) != 1 || released.Holds[0].Open() {
		t.Fatalf("hold record = %+v, want closed but retained", released.Holds)
	}

	if _, err := f.engine.GateOut(ctx, c.ID, GateInfo{}); err != nil {
		t.Fatalf("gate out after release: %v", err)
	}
}

func TestStackedHoldsRestoreOriginalStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.register(t, "CSQU3054383", "22G1")
	if _, err := f.engine.GateIn(ctx, c.ID, GateInfo{}); err != nil {
		t.Fatalf("gate in: %v", err)
	}

	first, err := f.engine.PlaceHold(ctx, c.ID, HoldInput{Type: domain.HoldCustoms, PlacedBy: "o-1"})
	if err != nil {
		t.Fatalf("first hold: %v", err)
	}
	second, err := f.engine.PlaceHold(ctx, c.ID, HoldInput{Type: domain.HoldSafety, PlacedBy: "o-2"})
	if err != nil {
		t.Fatalf("second hold: %v", err)
	}
	if second.PreHoldStatus != domain.StatusGatedIn {
		t.Fatalf("preHold = %s, want gated_in preserved across stacked holds", second.PreHoldStatus)
	}

	mid, err := f.engine.ReleaseHold(ctx, c.ID, first.Holds[0].ID, "o-1")
	if err != nil {
		t.Fatalf("release first: %v", err)
	}
	if mid.Status != domain.StatusOnHold {
		t.Fatalf("status = %s, want still on_hold with one open hold", mid.Status)
	}

	final, err := f.engine.ReleaseHold(ctx, c.ID, second.Holds[1].ID, "o-2")
	if err != nil {
		t.Fatalf("release second: %v", err)
	}
	if final.Status != domain.StatusGatedIn {
		t.Fatalf("status = %s, want gated_in restored", final.Status)
	}

	if _, err := f.engine.ReleaseHold(ctx, c.ID, first.Holds[0].ID, "o-1"); !domain.IsCode(err, domain.CodeHoldNotFound) {
		t.Fatalf("expected HOLD_NOT_FOUND on double release, got %v", err)
	}
}

func TestHoldOnTerminalContainerRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.register(t, "CSQU3054383", "22G1")
	if _, err := f.engine.GateIn(ctx, c.ID, GateInfo{}); err != nil {
		t.Fatalf("gate in: %v", err)
	}
	if _, err := f.engine.Ground(ctx, c.ID, "A-01-01", MoveInfo{}); err != nil {
		t.Fatalf("ground: %v", err)
	}
	if _, err := f.engine.Pick(ctx, c.ID, MoveInfo{}); err != nil {
		t.Fatalf("pick: %v", err)
	}
	if _, err := f.engine.GateOut(ctx, c.ID, GateInfo{}); err != nil {
		t.Fatalf("gate out: %v", err)
	}

	if _, err := f.engine.PlaceHold(ctx, c.ID, HoldInput{Type: domain.HoldCustoms}); !domain.IsCode(err, domain.CodeInvalidTransition) {
		t.Fatalf("expected hold on gated-out container to fail, got %v", err)
	}
}

func TestReeferPlugCycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	setTemp := -18.0

	c, err := f.engine.RegisterContainer(ctx, RegisterInput{
		TenantID: "t-1", FacilityID: f.facilityID,
		ContainerNumber: "MSCU1234566", ISOType: "22R1",
		ReeferSetTemp: &setTemp,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	c, err = f.engine.PlugInReefer(ctx, c.ID, "op-1")
	if err != nil {
		t.Fatalf("plug in: %v", err)
	}
	if !c.Reefer.PluggedIn || c.Reefer.PluggedInAt == nil {
		t.Fatalf("reefer = %+v", c.Reefer)
	}

	if _, err := f.engine.PlugInReefer(ctx, c.ID, "op-1"); !domain.IsCode(err, domain.CodeInvalidStatus) {
		t.Fatalf("expected double plug-in to fail, got %v", err)
	}

	c, err = f.engine.UnplugReefer(ctx, c.ID, "op-1")
	if err != nil {
		t.Fatalf("unplug: %v", err)
	}
	if c.Reefer.PluggedIn || c.Reefer.PluggedInAt != nil {
		t.Fatalf("reefer = %+v", c.Reefer)
	}
	if _, err := f.engine.UnplugReefer(ctx, c.ID, "op-1"); !domain.IsCode(err, domain.CodeInvalidStatus) {
		t.Fatalf("expected double unplug to fail, got %v", err)
	}

	dry := f.register(t, "CSQU3054383", "22G1")
	if _, err := f.engine.PlugInReefer(ctx, dry.ID, "op-1"); !domain.IsCode(err, domain.CodeNotReefer) {
		t.Fatalf("expected NOT_REEFER, got %v", err)
	}
}

func TestReeferTemperatureAlert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	setTemp := -18.0

	c, err := f.engine.RegisterContainer(ctx, RegisterInput{
		TenantID: "t-1", FacilityID: f.facilityID,
		ContainerNumber: "MSCU1234566", ISOType: "22R1",
		ReeferSetTemp: &setTemp,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// Within the 3 degree band: reading recorded, no alert.
	c, err = f.engine.UpdateReeferTemperature(ctx, c.ID, -16)
	if err != nil {
		t.Fatalf("update temp: %v", err)
	}
	if c.Reefer.CurrentTemperature != -16 || len(c.Reefer.Alerts) != 0 {
		t.Fatalf("reefer = %+v", c.Reefer)
	}

	c, err = f.engine.UpdateReeferTemperature(ctx, c.ID, -10)
	if err != nil {
		t.Fatalf("update temp: %v", err)
	}
	if len(c.Reefer.Alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(c.Reefer.Alerts))
	}
	if dev := c.Reefer.Alerts[0].Deviation; dev != 8 {
		t.Errorf("deviation = %f, want 8", dev)
	}

	last, ok := f.recorder.last()
	if !ok || last.Type != domain.EventContainerReeferTempAlert {
		t.Fatalf("last event = %+v, want reefer_temp_alert", last)
	}
	if last.Severity != domain.SeverityCritical {
		t.Errorf("alert severity = %s, want critical", last.Severity)
	}
	payload, ok := last.Payload.(domain.ReeferAlertPayload)
	if !ok || payload.ActualTemp != -10 || payload.SetTemp != setTemp {
		t.Fatalf("alert payload = %+v", last.Payload)
	}
}

func TestUpdateCustomsStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.register(t, "CSQU3054383", "22G1")

	got, err := f.engine.UpdateCustomsStatus(ctx, c.ID, domain.CustomsOutOfCharge, "BOE-77", "", "officer-1")
	if err != nil {
		t.Fatalf("update customs: %v", err)
	}
	if got.CustomsStatus != domain.CustomsOutOfCharge || got.BOENumber != "BOE-77" {
		t.Fatalf("after update: %+v", got)
	}
	if got.Status != domain.StatusAnnounced {
		t.Errorf("lifecycle status changed by customs update: %s", got.Status)
	}

	if _, err := f.engine.UpdateCustomsStatus(ctx, c.ID, "bogus", "", "", ""); !domain.IsCode(err, domain.CodeInvalidStatus) {
		t.Fatalf("expected INVALID_STATUS, got %v", err)
	}
}

func TestQueriesAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	setTemp := -20.0

	dry := f.register(t, "CSQU3054383", "22G1")
	if _, err := f.engine.RegisterContainer(ctx, RegisterInput{
		TenantID: "t-1", FacilityID: f.facilityID,
		ContainerNumber: "MSCU1234566", ISOType: "45R1",
		ReeferSetTemp: &setTemp,
	}); err != nil {
		t.Fatalf("register reefer: %v", err)
	}

	if _, err := f.engine.GateIn(ctx, dry.ID, GateInfo{}); err != nil {
		t.Fatalf("gate in: %v", err)
	}

	byNum, err := f.engine.ByNumber("t-1", " csqu3054383 ")
	if err != nil {
		t.Fatalf("by number: %v", err)
	}
	if byNum.ID != dry.ID {
		t.Fatalf("by number returned %s", byNum.ID)
	}

	all := f.engine.ByFacility(f.facilityID, Query{})
	if len(all) != 2 {
		t.Fatalf("expected 2 containers, got %d", len(all))
	}
	reefers := f.engine.ByFacility(f.facilityID, Query{OnlyReefers: true})
	if len(reefers) != 1 {
		t.Fatalf("expected 1 reefer, got %d", len(reefers))
	}
	gated := f.engine.ByStatus(f.facilityID, domain.StatusGatedIn)
	if len(gated) != 1 || gated[0].ID != dry.ID {
		t.Fatalf("by status = %v", gated)
	}

	stats := f.engine.Stats(f.facilityID)
	if stats.Total != 2 || stats.ReeferCount != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.TotalTEU != 3.0 {
		t.Errorf("TEU = %f, want 3 (one 20ft + one 40ft)", stats.TotalTEU)
	}
	if stats.ByStatus[domain.StatusGatedIn] != 1 || stats.ByStatus[domain.StatusAnnounced] != 1 {
		t.Errorf("byStatus = %v", stats.ByStatus)
	}
}

func TestAddPhotoAndDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.register(t, "CSQU3054383", "22G1")

	got, err := f.engine.AddPhoto(ctx, c.ID, domain.Photo{URL: "https://img/1.jpg", TakenBy: "op-1"})
	if err != nil {
		t.Fatalf("add photo: %v", err)
	}
	if len(got.Photos) != 1 || got.Photos[0].ID == "" || got.Photos[0].TakenAt.IsZero() {
		t.Fatalf("photos = %+v", got.Photos)
	}

	got, err = f.engine.AddDocument(ctx, c.ID, domain.Document{Name: "BOE.pdf", URL: "https://doc/1.pdf"})
	if err != nil {
		t.Fatalf("add document: %v", err)
	}
	if len(got.Documents) != 1 || got.Documents[0].ID == "" {
		t.Fatalf("documents = %+v", got.Documents)
	}
}
