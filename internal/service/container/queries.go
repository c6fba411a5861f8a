package container

import (
	"strings"

	"github.com/icdstack/terminal/internal/domain"
)

// Query filters ByFacility results. Zero-value fields do not filter.
type Query struct {
	Status       domain.ContainerStatus
	Owner        string
	OnlyReefers  bool
	OnlyHazmat   bool
	WithOpenHold bool
}

// Container returns a snapshot by id.
func (e *Engine) Container(id string) (domain.Container, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	c, ok := e.containers[id]
	if !ok {
		return domain.Container{}, domain.Errorf(domain.CodeNotFound, "container %s not found", id)
	}
	return c.Clone(), nil
}

// ByNumber returns a snapshot by tenant-scoped container number.
func (e *Engine) ByNumber(tenantID, number string) (domain.Container, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	id, ok := e.byNumber[numberKey(tenantID, strings.ToUpper(strings.TrimSpace(number)))]
	if !ok {
		return domain.Container{}, domain.Errorf(domain.CodeNotFound, "container %s not found", number)
	}
	return e.containers[id].Clone(), nil
}

// ByFacility returns the facility's containers in registration order,
// narrowed by the query filters.
func (e *Engine) ByFacility(facilityID string, q Query) []domain.Container {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []domain.Container
	for _, id := range e.byFacility[facilityID] {
		c := e.containers[id]
		if q.Status != "" && c.Status != q.Status {
			continue
		}
		if q.Owner != "" && c.Owner != q.Owner {
			continue
		}
		if q.OnlyReefers && c.Reefer == nil {
			continue
		}
		if q.OnlyHazmat && c.Hazmat == nil {
			continue
		}
		if q.WithOpenHold && !c.HasOpenHold() {
			continue
		}
		out = append(out, c.Clone())
	}
	return out
}

// ContainersByFacility returns every container of a facility unfiltered.
func (e *Engine) ContainersByFacility(facilityID string) []domain.Container {
	return e.ByFacility(facilityID, Query{})
}

// ByStatus returns the facility's containers in the given status.
func (e *Engine) ByStatus(facilityID string, status domain.ContainerStatus) []domain.Container {
	return e.ByFacility(facilityID, Query{Status: status})
}

// Stats aggregates facility counts on demand.
func (e *Engine) Stats(facilityID string) domain.ContainerStats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := domain.ContainerStats{
		ByStatus: make(map[domain.ContainerStatus]int),
		BySize:   make(map[domain.ContainerSize]int),
		ByKind:   make(map[domain.ContainerKind]int),
	}
	now := e.clock.Now()
	for _, id := range e.byFacility[facilityID] {
		c := e.containers[id]
		stats.Total++
		stats.ByStatus[c.Status]++
		stats.BySize[c.Size]++
		stats.ByKind[c.Kind]++
		stats.TotalTEU += c.Size.TEU()
		if c.Reefer != nil {
			stats.ReeferCount++
			if c.Reefer.PluggedIn {
				stats.ReeferPluggedIn++
			}
		}
		if c.Hazmat != nil {
			stats.HazmatCount++
		}
		if c.HasOpenHold() {
			stats.OnHoldCount++
		}
		if !c.Status.Terminal() && c.FreeTimeExpiry != nil && c.FreeTimeExpiry.Before(now) {
			stats.OverdueCount++
		}
	}
	return stats
}
