package yard

import (
	"testing"

	"github.com/icdstack/terminal/internal/domain"
)

func TestRecommendSlotPrefersEmptyNearGate(t *testing.T) {
	f := newYardFixture(t)
	c := domain.Container{Size: domain.Size20}

	recs := f.engine.RecommendSlot(f.facilityID, c, 0)
	if len(recs) != 7 {
		t.Fatalf("expected all 7 slots ranked, got %d", len(recs))
	}
	// Front-row empties tie on score; barcode breaks the tie.
	if recs[0].Location.Barcode != "A-01-01" {
		t.Fatalf("top recommendation = %s, want A-01-01", recs[0].Location.Barcode)
	}
	if recs[0].Location.Tier != 1 {
		t.Errorf("tier = %d, want 1", recs[0].Location.Tier)
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Score > recs[i-1].Score {
			t.Fatalf("recommendations not sorted by score at %d", i)
		}
	}

	// A stacked slot scores below every empty one.
	if err := f.manager.Occupy("A-01-01", "c-0", "TEMU1234565"); err != nil {
		t.Fatalf("occupy: %v", err)
	}
	recs = f.engine.RecommendSlot(f.facilityID, c, 0)
	last := recs[len(recs)-1]
	if last.Location.Barcode != "A-01-01" {
		t.Fatalf("stacked slot ranked %s, want last", last.Location.Barcode)
	}
	if last.StackHeight != 1 || last.RehandlesNeeded != 1 || last.Location.Tier != 2 {
		t.Errorf("stacked recommendation = %+v", last)
	}
	if len(last.Warnings) == 0 {
		t.Error("expected a rehandle warning on the stacked slot")
	}
}

func TestRecommendSlotCloserRowWinsOverFarther(t *testing.T) {
	f := newYardFixture(t)
	c := domain.Container{Size: domain.Size20}

	recs := f.engine.RecommendSlot(f.facilityID, c, 0)
	rowOf := make(map[string]int)
	for i, r := range recs {
		rowOf[r.Location.Barcode] = i
	}
	if rowOf["A-01-02"] > rowOf["A-02-01"] {
		t.Error("expected front-row slot ranked above second-row slot")
	}
	if rowOf["A-02-01"] > rowOf["A-03-01"] {
		t.Error("expected second-row slot ranked above third-row slot")
	}
}

func TestRecommendSlotHardConstraints(t *testing.T) {
	f := newYardFixture(t)

	// No hazmat block exists, so a hazmat container gets no candidates.
	hazmat := domain.Container{Size: domain.Size20, Hazmat: &domain.HazmatInfo{UNNumber: "1203", Class: "3"}}
	if recs := f.engine.RecommendSlot(f.facilityID, hazmat, 0); len(recs) != 0 {
		t.Fatalf("expected no recommendations for hazmat, got %d", len(recs))
	}

	// Reefers are confined to the reefer block and earn the plug bonus.
	reefer := domain.Container{Size: domain.Size20, Reefer: &domain.ReeferInfo{SetTemperature: -18}}
	recs := f.engine.RecommendSlot(f.facilityID, reefer, 0)
	if len(recs) != 1 || recs[0].Location.Barcode != "R-01-01" {
		t.Fatalf("reefer recommendations = %v", recs)
	}
	dry := f.engine.RecommendSlot(f.facilityID, domain.Container{Size: domain.Size20}, 0)
	var drySlotScore float64
	for _, r := range dry {
		if r.Location.Barcode == "R-01-01" {
			drySlotScore = r.Score
		}
	}
	if recs[0].Score <= drySlotScore {
		t.Errorf("reefer score %f should exceed dry score %f for the plugged slot", recs[0].Score, drySlotScore)
	}
}

func TestRecommendSlotLimit(t *testing.T) {
	f := newYardFixture(t)
	c := domain.Container{Size: domain.Size20}

	if recs := f.engine.RecommendSlot(f.facilityID, c, 2); len(recs) != 2 {
		t.Fatalf("expected 2 recommendations with limit, got %d", len(recs))
	}
}
