package httpx

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/icdstack/terminal/internal/domain"
	"github.com/icdstack/terminal/internal/service/yard"
)

func (r *Router) handleWorkOrders(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodPost:
		var payload struct {
			TenantID     string               `json:"tenantId"`
			FacilityID   string               `json:"facilityId"`
			Type         domain.WorkOrderType `json:"type"`
			ContainerID  string               `json:"containerId"`
			From         domain.LocationRef   `json:"from"`
			To           domain.LocationRef   `json:"to"`
			Priority     int                  `json:"priority"`
			Urgent       bool                 `json:"urgent"`
			Instructions string               `json:"instructions"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		order, err := r.yard.CreateWorkOrder(req.Context(), yard.CreateInput{
			TenantID:     payload.TenantID,
			FacilityID:   payload.FacilityID,
			Type:         payload.Type,
			ContainerID:  payload.ContainerID,
			From:         payload.From,
			To:           payload.To,
			Priority:     payload.Priority,
			Urgent:       payload.Urgent,
			Instructions: payload.Instructions,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, order)
	case http.MethodGet:
		query := req.URL.Query()
		facilityID := query.Get("facility_id")
		if facilityID == "" {
			writeError(w, http.StatusBadRequest, "facility_id query parameter required")
			return
		}
		if query.Get("pending") == "true" {
			writeJSON(w, http.StatusOK, r.yard.PendingWorkOrders(facilityID))
			return
		}
		writeJSON(w, http.StatusOK, r.yard.WorkOrdersByFacility(facilityID))
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleWorkOrderSubroutes(w http.ResponseWriter, req *http.Request) {
	trimmed := strings.TrimPrefix(req.URL.Path, "/work-orders/")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 1 || parts[0] == "" {
		r.notFound(w)
		return
	}
	id := parts[0]

	if len(parts) == 1 {
		if req.Method != http.MethodGet {
			r.methodNotAllowed(w)
			return
		}
		order, err := r.yard.WorkOrder(id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, order)
		return
	}
	if len(parts) != 2 {
		r.notFound(w)
		return
	}
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}

	var payload struct {
		EquipmentID string `json:"equipmentId"`
		OperatorID  string `json:"operatorId"`
		Notes       string `json:"notes"`
		Reason      string `json:"reason"`
	}
	_ = json.NewDecoder(req.Body).Decode(&payload)

	var (
		order domain.WorkOrder
		err   error
	)
	switch parts[1] {
	case "assign":
		order, err = r.yard.AssignWorkOrder(req.Context(), id, payload.EquipmentID, payload.OperatorID)
	case "start":
		order, err = r.yard.StartWorkOrder(req.Context(), id)
	case "complete":
		order, err = r.yard.CompleteWorkOrder(req.Context(), id, payload.Notes)
	case "cancel":
		order, err = r.yard.CancelWorkOrder(req.Context(), id, payload.Reason)
	case "fail":
		order, err = r.yard.FailWorkOrder(req.Context(), id, payload.Reason)
	default:
		r.notFound(w)
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
