package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/icdstack/terminal/internal/domain"
	"github.com/icdstack/terminal/internal/eventbus"
	"github.com/icdstack/terminal/internal/facility"
)

func (r *Router) handleFacilities(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		TenantID    string  `json:"tenantId"`
		Code        string  `json:"code"`
		Name        string  `json:"name"`
		CapacityTEU float64 `json:"capacityTeu"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if payload.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}
	f := r.facilities.AddFacility(payload.TenantID, payload.Code, payload.Name, payload.CapacityTEU)
	writeJSON(w, http.StatusCreated, f)
}

func (r *Router) handleFacilitySubroutes(w http.ResponseWriter, req *http.Request) {
	trimmed := strings.TrimPrefix(req.URL.Path, "/facilities/")
	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 || parts[0] == "" {
		r.notFound(w)
		return
	}
	id := parts[0]

	switch parts[1] {
	case "zones":
		r.handleAddZone(w, req, id)
	case "stats":
		r.handleFacilityStats(w, req, id)
	case "container-stats":
		r.handleContainerStats(w, req, id)
	case "occupancy":
		r.handleOccupancy(w, req, id)
	case "recommendations":
		r.handleRecommendations(w, req, id)
	case "capacity-check":
		r.handleCapacityCheck(w, req, id)
	default:
		r.notFound(w)
	}
}

func (r *Router) handleAddZone(w http.ResponseWriter, req *http.Request, facilityID string) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Code           string          `json:"code"`
		Name           string          `json:"name"`
		Kind           domain.ZoneKind `json:"kind"`
		MaxStackHeight int             `json:"maxStackHeight"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if payload.MaxStackHeight <= 0 {
		payload.MaxStackHeight = 4
	}
	zone := r.facilities.AddZone(facilityID, payload.Code, payload.Name, payload.Kind, payload.MaxStackHeight)
	writeJSON(w, http.StatusCreated, zone)
}

func (r *Router) handleZoneSubroutes(w http.ResponseWriter, req *http.Request) {
	trimmed := strings.TrimPrefix(req.URL.Path, "/zones/")
	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "blocks" {
		r.notFound(w)
		return
	}
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Code          string                 `json:"code"`
		Name          string                 `json:"name"`
		Rows          int                    `json:"rows"`
		SlotsPerRow   int                    `json:"slotsPerRow"`
		MaxTiers      int                    `json:"maxTiers"`
		ReeferCapable bool                   `json:"reeferCapable"`
		HazmatCapable bool                   `json:"hazmatCapable"`
		AllowedSizes  []domain.ContainerSize `json:"allowedSizes"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if payload.Code == "" || payload.Rows <= 0 || payload.SlotsPerRow <= 0 {
		writeError(w, http.StatusBadRequest, "code, rows and slotsPerRow are required")
		return
	}
	block, err := r.facilities.AddBlock(parts[0], facility.BlockSpec{
		Code:          payload.Code,
		Name:          payload.Name,
		Rows:          payload.Rows,
		SlotsPerRow:   payload.SlotsPerRow,
		MaxTiers:      payload.MaxTiers,
		ReeferCapable: payload.ReeferCapable,
		HazmatCapable: payload.HazmatCapable,
		AllowedSizes:  payload.AllowedSizes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, block)
}

func (r *Router) handleFacilityStats(w http.ResponseWriter, req *http.Request, facilityID string) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	stats, ok := r.facilities.FacilityStats(facilityID)
	if !ok {
		r.notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (r *Router) handleContainerStats(w http.ResponseWriter, req *http.Request, facilityID string) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, r.containers.Stats(facilityID))
}

func (r *Router) handleOccupancy(w http.ResponseWriter, req *http.Request, facilityID string) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, r.yard.YardOccupancy(facilityID))
}

func (r *Router) handleRecommendations(w http.ResponseWriter, req *http.Request, facilityID string) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		ContainerID string `json:"containerId"`
		Limit       int    `json:"limit"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	c, err := r.containers.Container(payload.ContainerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, r.yard.RecommendSlot(facilityID, c, payload.Limit))
}

func (r *Router) handleCapacityCheck(w http.ResponseWriter, req *http.Request, facilityID string) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, r.yard.CheckCapacityAlerts(facilityID))
}

func (r *Router) handleEventHistory(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	query := req.URL.Query()
	filter := eventbus.HistoryFilter{
		Pattern:    query.Get("pattern"),
		FacilityID: query.Get("facility_id"),
	}
	if raw := query.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid since timestamp")
			return
		}
		filter.Since = since
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = limit
	}
	events := r.bus.History(filter)
	if events == nil {
		events = []domain.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}
