package yard

import (
	"fmt"
	"sort"

	"github.com/icdstack/terminal/internal/domain"
	"github.com/icdstack/terminal/internal/facility"
)

// Scoring weights. Each criterion is monotone: a slot never scores better by
// being further from the gate, higher-stacked, or needing more rehandles.
const (
	scoreBase           = 50.0
	scoreEmptySlotBonus = 15.0
	scoreReeferBonus    = 10.0
	scoreStackPenalty   = 5.0 // per tier already in the slot
	scoreRowPenalty     = 2.0 // per row away from the gate side
	scoreRehandlePen    = 4.0 // per container that would sit beneath
)

// defaultRecommendations caps the ranked list when the caller does not.
const defaultRecommendations = 10

// RecommendSlot ranks candidate slots for grounding a container. Hard
// constraints (size fit, reefer plugs, hazmat segregation, a free tier) are
// filtered through the topology first; survivors are scored from a base of
// 50 with an empty-slot bonus, a reefer-plug bonus, and penalties per
// existing tier, per row away from the gate and per prospective rehandle,
// clamped to 0..100. Equal scores order by barcode. An empty list means no
// slot satisfies the hard constraints.
func (e *Engine) RecommendSlot(facilityID string, c domain.Container, limit int) []domain.SlotRecommendation {
	if limit <= 0 {
		limit = defaultRecommendations
	}
	candidates := e.topo.AvailableSlots(facilityID, facility.SlotConstraints{
		Size:           c.Size,
		ReeferRequired: c.Reefer != nil,
		HazmatRequired: c.Hazmat != nil,
		MinFreeTiers:   1,
	})

	out := make([]domain.SlotRecommendation, 0, len(candidates))
	for _, slot := range candidates {
		block, ok := e.topo.Block(slot.BlockID)
		if !ok {
			continue
		}
		rec := domain.SlotRecommendation{
			Location: domain.YardLocation{
				FacilityID: block.FacilityID,
				ZoneID:     block.ZoneID,
				BlockID:    block.ID,
				Row:        slot.Row,
				Slot:       slot.Slot,
				Tier:       slot.CurrentTiers + 1,
				Barcode:    slot.Barcode,
			},
			Score:            scoreBase,
			StackHeight:      slot.CurrentTiers,
			RehandlesNeeded:  slot.CurrentTiers,
			DistanceFromGate: float64(slot.Row - 1),
		}
		if slot.CurrentTiers == 0 {
			rec.Score += scoreEmptySlotBonus
			rec.Reasons = append(rec.Reasons, "empty slot, no stacking")
		} else {
			rec.Score -= scoreStackPenalty * float64(slot.CurrentTiers)
			rec.Score -= scoreRehandlePen * float64(slot.CurrentTiers)
			rec.Reasons = append(rec.Reasons, fmt.Sprintf("stacks on %d container(s)", slot.CurrentTiers))
			rec.Warnings = append(rec.Warnings, fmt.Sprintf("%d rehandle(s) if retrieved out of order", slot.CurrentTiers))
		}
		rec.Score -= scoreRowPenalty * rec.DistanceFromGate
		if rec.DistanceFromGate == 0 {
			rec.Reasons = append(rec.Reasons, "front row, closest to gate")
		}
		if c.Reefer != nil && block.ReeferCapable {
			rec.Score += scoreReeferBonus
			rec.Reasons = append(rec.Reasons, "reefer plug available")
		}
		if rec.Score < 0 {
			rec.Score = 0
		}
		if rec.Score > 100 {
			rec.Score = 100
		}
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Location.Barcode < out[j].Location.Barcode
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
