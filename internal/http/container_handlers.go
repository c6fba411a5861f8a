package httpx

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/icdstack/terminal/internal/domain"
	"github.com/icdstack/terminal/internal/service/container"
)

func (r *Router) handleContainers(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodPost:
		var payload struct {
			TenantID        string                `json:"tenantId"`
			FacilityID      string                `json:"facilityId"`
			ContainerNumber string                `json:"containerNumber"`
			ISOType         string                `json:"isoType"`
			Owner           string                `json:"owner"`
			OwnerName       string                `json:"ownerName"`
			BLNumber        string                `json:"blNumber"`
			BOENumber       string                `json:"boeNumber"`
			SBNumber        string                `json:"sbNumber"`
			TareWeightKg    float64               `json:"tareWeightKg"`
			GrossWeightKg   float64               `json:"grossWeightKg"`
			MaxPayloadKg    float64               `json:"maxPayloadKg"`
			Hazmat          *domain.HazmatInfo    `json:"hazmat"`
			ReeferSetTemp   *float64              `json:"reeferSetTemp"`
			OOG             *domain.OverGaugeInfo `json:"oog"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		c, err := r.containers.RegisterContainer(req.Context(), container.RegisterInput{
			TenantID:        payload.TenantID,
			FacilityID:      payload.FacilityID,
			ContainerNumber: payload.ContainerNumber,
			ISOType:         payload.ISOType,
			Owner:           payload.Owner,
			OwnerName:       payload.OwnerName,
			BLNumber:        payload.BLNumber,
			BOENumber:       payload.BOENumber,
			SBNumber:        payload.SBNumber,
			TareWeightKg:    payload.TareWeightKg,
			GrossWeightKg:   payload.GrossWeightKg,
			MaxPayloadKg:    payload.MaxPayloadKg,
			Hazmat:          payload.Hazmat,
			ReeferSetTemp:   payload.ReeferSetTemp,
			OOG:             payload.OOG,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	case http.MethodGet:
		query := req.URL.Query()
		facilityID := query.Get("facility_id")
		if facilityID == "" {
			writeError(w, http.StatusBadRequest, "facility_id query parameter required")
			return
		}
		list := r.containers.ByFacility(facilityID, container.Query{
			Status:       domain.ContainerStatus(query.Get("status")),
			Owner:        query.Get("owner"),
			OnlyReefers:  query.Get("reefer") == "true",
			OnlyHazmat:   query.Get("hazmat") == "true",
			WithOpenHold: query.Get("held") == "true",
		})
		writeJSON(w, http.StatusOK, list)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleContainerSubroutes(w http.ResponseWriter, req *http.Request) {
	trimmed := strings.TrimPrefix(req.URL.Path, "/containers/")
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
		c, err := r.containers.Container(id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
		return
	}

	switch {
	case len(parts) == 2 && parts[1] == "arrival":
		r.handleArrival(w, req, id)
	case len(parts) == 2 && parts[1] == "gate-in":
		r.handleGateIn(w, req, id)
	case len(parts) == 2 && parts[1] == "ground":
		r.handleGround(w, req, id)
	case len(parts) == 2 && parts[1] == "pick":
		r.handlePick(w, req, id)
	case len(parts) == 2 && parts[1] == "gate-out":
		r.handleGateOut(w, req, id)
	case len(parts) == 2 && parts[1] == "holds":
		r.handlePlaceHold(w, req, id)
	case len(parts) == 4 && parts[1] == "holds" && parts[3] == "release":
		r.handleReleaseHold(w, req, id, parts[2])
	case len(parts) == 3 && parts[1] == "reefer" && parts[2] == "plug":
		r.handleReeferPlug(w, req, id, true)
	case len(parts) == 3 && parts[1] == "reefer" && parts[2] == "unplug":
		r.handleReeferPlug(w, req, id, false)
	case len(parts) == 3 && parts[1] == "reefer" && parts[2] == "temperature":
		r.handleReeferTemperature(w, req, id)
	case len(parts) == 2 && parts[1] == "customs":
		r.handleCustoms(w, req, id)
	case len(parts) == 2 && parts[1] == "photos":
		r.handleAddPhoto(w, req, id)
	case len(parts) == 2 && parts[1] == "documents":
		r.handleAddDocument(w, req, id)
	default:
		r.notFound(w)
	}
}

func (r *Router) handleArrival(w http.ResponseWriter, req *http.Request, id string) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	c, err := r.containers.RecordArrival(req.Context(), id, req.Header.Get("X-Operator-ID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func decodeGateInfo(req *http.Request) (container.GateInfo, error) {
	var payload struct {
		GateNumber  string   `json:"gateNumber"`
		TruckNumber string   `json:"truckNumber"`
		DriverName  string   `json:"driverName"`
		SealNumbers []string `json:"sealNumbers"`
		Condition   string   `json:"condition"`
		OperatorID  string   `json:"operatorId"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		return container.GateInfo{}, err
	}
	return container.GateInfo{
		GateNumber:  payload.GateNumber,
		TruckNumber: payload.TruckNumber,
		DriverName:  payload.DriverName,
		SealNumbers: payload.SealNumbers,
		Condition:   payload.Condition,
		OperatorID:  payload.OperatorID,
	}, nil
}

func (r *Router) handleGateIn(w http.ResponseWriter, req *http.Request, id string) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	gate, err := decodeGateInfo(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	c, err := r.containers.GateIn(req.Context(), id, gate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (r *Router) handleGround(w http.ResponseWriter, req *http.Request, id string) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Barcode     string `json:"barcode"`
		EquipmentID string `json:"equipmentId"`
		OperatorID  string `json:"operatorId"`
		WorkOrderID string `json:"workOrderId"`
		Notes       string `json:"notes"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if payload.Barcode == "" {
		writeError(w, http.StatusBadRequest, "barcode is required")
		return
	}
	c, err := r.containers.Ground(req.Context(), id, payload.Barcode, container.MoveInfo{
		EquipmentID: payload.EquipmentID,
		OperatorID:  payload.OperatorID,
		WorkOrderID: payload.WorkOrderID,
		Notes:       payload.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (r *Router) handlePick(w http.ResponseWriter, req *http.Request, id string) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		EquipmentID string `json:"equipmentId"`
		OperatorID  string `json:"operatorId"`
		WorkOrderID string `json:"workOrderId"`
		Notes       string `json:"notes"`
	}
	_ = json.NewDecoder(req.Body).Decode(&payload)
	c, err := r.containers.Pick(req.Context(), id, container.MoveInfo{
		EquipmentID: payload.EquipmentID,
		OperatorID:  payload.OperatorID,
		WorkOrderID: payload.WorkOrderID,
		Notes:       payload.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (r *Router) handleGateOut(w http.ResponseWriter, req *http.Request, id string) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	gate, err := decodeGateInfo(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	c, err := r.containers.GateOut(req.Context(), id, gate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (r *Router) handlePlaceHold(w http.ResponseWriter, req *http.Request, id string) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Type      domain.HoldType     `json:"type"`
		Reason    string              `json:"reason"`
		Reference string              `json:"reference"`
		Priority  domain.HoldPriority `json:"priority"`
		PlacedBy  string              `json:"placedBy"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	c, err := r.containers.PlaceHold(req.Context(), id, container.HoldInput{
		Type:      payload.Type,
		Reason:    payload.Reason,
		Reference: payload.Reference,
		Priority:  payload.Priority,
		PlacedBy:  payload.PlacedBy,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (r *Router) handleReleaseHold(w http.ResponseWriter, req *http.Request, id, holdID string) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		ReleasedBy string `json:"releasedBy"`
	}
	_ = json.NewDecoder(req.Body).Decode(&payload)
	c, err := r.containers.ReleaseHold(req.Context(), id, holdID, payload.ReleasedBy)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (r *Router) handleReeferPlug(w http.ResponseWriter, req *http.Request, id string, plugIn bool) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	operator := req.Header.Get("X-Operator-ID")
	var (
		c   any
		err error
	)
	if plugIn {
		c, err = r.containers.PlugInReefer(req.Context(), id, operator)
	} else {
		c, err = r.containers.UnplugReefer(req.Context(), id, operator)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (r *Router) handleReeferTemperature(w http.ResponseWriter, req *http.Request, id string) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Temperature float64 `json:"temperature"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	c, err := r.containers.UpdateReeferTemperature(req.Context(), id, payload.Temperature)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (r *Router) handleCustoms(w http.ResponseWriter, req *http.Request, id string) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Status    domain.CustomsStatus `json:"status"`
		BOENumber string               `json:"boeNumber"`
		SBNumber  string               `json:"sbNumber"`
		Actor     string               `json:"actor"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	c, err := r.containers.UpdateCustomsStatus(req.Context(), id, payload.Status, payload.BOENumber, payload.SBNumber, payload.Actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (r *Router) handleAddPhoto(w http.ResponseWriter, req *http.Request, id string) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var photo domain.Photo
	if err := json.NewDecoder(req.Body).Decode(&photo); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if photo.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	c, err := r.containers.AddPhoto(req.Context(), id, photo)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (r *Router) handleAddDocument(w http.ResponseWriter, req *http.Request, id string) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var doc domain.Document
	if err := json.NewDecoder(req.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if doc.URL == "" || doc.Name == "" {
		writeError(w, http.StatusBadRequest, "name and url are required")
		return
	}
	c, err := r.containers.AddDocument(req.Context(), id, doc)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}
