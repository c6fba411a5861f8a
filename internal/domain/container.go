package domain

import "time"

// ContainerStatus is the lifecycle state of a container inside the depot.
type ContainerStatus string

const (
	StatusAnnounced ContainerStatus = "announced"
	StatusArrived   ContainerStatus = "arrived"
	StatusGatedIn   ContainerStatus = "gated_in"
	StatusGrounded  ContainerStatus = "grounded"
	StatusPicked    ContainerStatus = "picked"
	StatusGatedOut  ContainerStatus = "gated_out"
	StatusOnHold    ContainerStatus = "on_hold"
	StatusDeparted  ContainerStatus = "departed"
)

// ContainerStatuses lists every lifecycle state.
var ContainerStatuses = []ContainerStatus{
	StatusAnnounced, StatusArrived, StatusGatedIn, StatusGrounded,
	StatusPicked, StatusGatedOut, StatusOnHold, StatusDeparted,
}

// Terminal reports whether the status ends the lifecycle; terminal containers
// never transition again.
func (s ContainerStatus) Terminal() bool {
	return s == StatusGatedOut || s == StatusDeparted
}

// CustomsStatus is an axis independent of the lifecycle status.
type CustomsStatus string

const (
	CustomsPending     CustomsStatus = "pending"
	CustomsExamination CustomsStatus = "examination"
	CustomsOutOfCharge CustomsStatus = "out_of_charge"
	CustomsLetExport   CustomsStatus = "let_export"
	CustomsDetained    CustomsStatus = "detained"
)

// ContainerSize is the nominal length class in feet.
type ContainerSize string

const (
	Size20 ContainerSize = "20"
	Size40 ContainerSize = "40"
	Size45 ContainerSize = "45"
)

// TEU returns the twenty-foot-equivalent weight of the size class.
func (s ContainerSize) TEU() float64 {
	switch s {
	case Size40:
		return 2
	case Size45:
		return 2.25
	default:
		return 1
	}
}

// ContainerKind is the equipment group decoded from the ISO type code.
type ContainerKind string

const (
	KindDry      ContainerKind = "dry"
	KindReefer   ContainerKind = "reefer"
	KindOpenTop  ContainerKind = "open_top"
	KindTank     ContainerKind = "tank"
	KindFlatRack ContainerKind = "flat_rack"
)

// ISOTypeInfo is the decoded form of an ISO 6346 size/type code such as
// "22G1" or "45R1".
type ISOTypeInfo struct {
	Size     ContainerSize `json:"size"`
	Kind     ContainerKind `json:"kind"`
	HighCube bool          `json:"highCube"`
}

// ParseISOType decodes a 4-character ISO size/type code. The first character
// encodes length, the second height, the third the equipment group.
func ParseISOType(code string) (ISOTypeInfo, error) {
	if len(code) != 4 {
		return ISOTypeInfo{}, Errorf(CodeInvalidContainerNumber, "iso type code must be 4 characters, got %q", code)
	}
	info := ISOTypeInfo{Kind: KindDry}
	switch code[0] {
	case '2':
		info.Size = Size20
	case '4':
		info.Size = Size40
	case '9', 'L':
		info.Size = Size45
	default:
		return ISOTypeInfo{}, Errorf(CodeInvalidContainerNumber, "unknown length code %q in iso type %q", code[0], code)
	}
	switch code[1] {
	case '5', '6', 'E':
		info.HighCube = true
	}
	switch code[2] {
	case 'G', 'B':
		info.Kind = KindDry
	case 'R', 'H':
		info.Kind = KindReefer
	case 'U':
		info.Kind = KindOpenTop
	case 'T':
		info.Kind = KindTank
	case 'P':
		info.Kind = KindFlatRack
	default:
		return ISOTypeInfo{}, Errorf(CodeInvalidContainerNumber, "unknown equipment group %q in iso type %q", code[2], code)
	}
	return info, nil
}

// DefaultTareWeightKg returns the typical tare weight used when registration
// does not supply one.
func DefaultTareWeightKg(size ContainerSize) float64 {
	switch size {
	case Size40:
		return 3800
	case Size45:
		return 4200
	default:
		return 2200
	}
}

// DefaultMaxPayloadKg returns the typical maximum payload used when
// registration does not supply one.
func DefaultMaxPayloadKg(size ContainerSize) float64 {
	switch size {
	case Size40:
		return 26500
	case Size45:
		return 25500
	default:
		return 28000
	}
}

// HazmatInfo describes dangerous-goods classification.
type HazmatInfo struct {
	UNNumber     string `json:"unNumber"`
	Class        string `json:"class"`
	PackingGroup string `json:"packingGroup"`
}

// ReeferTempAlert records a temperature excursion beyond the allowed
// deviation from the set point.
type ReeferTempAlert struct {
	At           time.Time `json:"at"`
	ActualTemp   float64   `json:"actualTemp"`
	SetTemp      float64   `json:"setTemp"`
	Deviation    float64   `json:"deviation"`
	Acknowledged bool      `json:"acknowledged"`
}

// ReeferInfo tracks the refrigeration unit of a reefer container.
type ReeferInfo struct {
	SetTemperature     float64           `json:"setTemperature"`
	CurrentTemperature float64           `json:"currentTemperature"`
	PluggedIn          bool              `json:"pluggedIn"`
	PluggedInAt        *time.Time        `json:"pluggedInAt,omitempty"`
	LastReadingAt      *time.Time        `json:"lastReadingAt,omitempty"`
	Alerts             []ReeferTempAlert `json:"alerts,omitempty"`
}

// OverGaugeInfo describes out-of-gauge dimensions in centimetres.
type OverGaugeInfo struct {
	OverHeightCm float64 `json:"overHeightCm,omitempty"`
	OverWidthCm  float64 `json:"overWidthCm,omitempty"`
	OverLengthCm float64 `json:"overLengthCm,omitempty"`
	OverweightKg float64 `json:"overweightKg,omitempty"`
}

// Photo is an image attached to a container record.
type Photo struct {
	ID      string    `json:"id"`
	URL     string    `json:"url"`
	Caption string    `json:"caption,omitempty"`
	TakenAt time.Time `json:"takenAt"`
	TakenBy string    `json:"takenBy,omitempty"`
}

// Document is a file attached to a container record.
type Document struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Kind     string    `json:"kind,omitempty"`
	URL      string    `json:"url"`
	AddedAt  time.Time `json:"addedAt"`
	AddedBy  string    `json:"addedBy,omitempty"`
	Checksum string    `json:"checksum,omitempty"`
}

// Container is the central entity of the depot. It is created on
// registration and mutated only through the lifecycle engine; it is never
// deleted.
type Container struct {
	ID              string `json:"id"`
	TenantID        string `json:"tenantId"`
	FacilityID      string `json:"facilityId"`
	ContainerNumber string `json:"containerNumber"`

	ISOType  string        `json:"isoType"`
	Size     ContainerSize `json:"size"`
	Kind     ContainerKind `json:"kind"`
	HighCube bool          `json:"highCube"`

	Status ContainerStatus `json:"status"`
	// PreHoldStatus is set while Status is on_hold; releasing the last open
	// hold restores it.
	PreHoldStatus ContainerStatus `json:"preHoldStatus,omitempty"`
	CustomsStatus CustomsStatus   `json:"customsStatus"`

	Owner       string   `json:"owner,omitempty"`
	OwnerName   string   `json:"ownerName,omitempty"`
	SealNumbers []string `json:"sealNumbers,omitempty"`
	BLNumber    string   `json:"blNumber,omitempty"`
	BOENumber   string   `json:"boeNumber,omitempty"`
	SBNumber    string   `json:"sbNumber,omitempty"`

	TareWeightKg  float64 `json:"tareWeightKg"`
	GrossWeightKg float64 `json:"grossWeightKg,omitempty"`
	MaxPayloadKg  float64 `json:"maxPayloadKg"`

	Hazmat *HazmatInfo    `json:"hazmat,omitempty"`
	Reefer *ReeferInfo    `json:"reefer,omitempty"`
	OOG    *OverGaugeInfo `json:"oog,omitempty"`

	// CurrentLocation is set if and only if Status is grounded (or on_hold
	// with a grounded pre-hold status).
	CurrentLocation   *YardLocation  `json:"currentLocation,omitempty"`
	PreviousLocations []YardLocation `json:"previousLocations,omitempty"`

	Holds     []Hold     `json:"holds,omitempty"`
	Movements []Movement `json:"movements,omitempty"`
	Photos    []Photo    `json:"photos,omitempty"`
	Documents []Document `json:"documents,omitempty"`

	GateInTime     *time.Time `json:"gateInTime,omitempty"`
	GateOutTime    *time.Time `json:"gateOutTime,omitempty"`
	GroundedTime   *time.Time `json:"groundedTime,omitempty"`
	FreeTimeExpiry *time.Time `json:"freeTimeExpiry,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OpenHolds returns the holds that have not been released.
func (c *Container) OpenHolds() []Hold {
	var open []Hold
	for _, h := range c.Holds {
		if h.Open() {
			open = append(open, h)
		}
	}
	return open
}

// HasOpenHold reports whether any hold is still open.
func (c *Container) HasOpenHold() bool {
	for _, h := range c.Holds {
		if h.Open() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing engine-owned state.
func (c *Container) Clone() Container {
	out := *c
	out.SealNumbers = append([]string(nil), c.SealNumbers...)
	out.PreviousLocations = append([]YardLocation(nil), c.PreviousLocations...)
	out.Holds = append([]Hold(nil), c.Holds...)
	out.Movements = append([]Movement(nil), c.Movements...)
	out.Photos = append([]Photo(nil), c.Photos...)
	out.Documents = append([]Document(nil), c.Documents...)
	if c.Hazmat != nil {
		h := *c.Hazmat
		out.Hazmat = &h
	}
	if c.Reefer != nil {
		r := *c.Reefer
		r.Alerts = append([]ReeferTempAlert(nil), c.Reefer.Alerts...)
		out.Reefer = &r
	}
	if c.OOG != nil {
		o := *c.OOG
		out.OOG = &o
	}
	if c.CurrentLocation != nil {
		l := *c.CurrentLocation
		out.CurrentLocation = &l
	}
	out.GateInTime = cloneTime(c.GateInTime)
	out.GateOutTime = cloneTime(c.GateOutTime)
	out.GroundedTime = cloneTime(c.GroundedTime)
	out.FreeTimeExpiry = cloneTime(c.FreeTimeExpiry)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// ContainerStats aggregates facility-level counts, recomputed on demand.
type ContainerStats struct {
	Total           int                     `json:"total"`
	ByStatus        map[ContainerStatus]int `json:"byStatus"`
	BySize          map[ContainerSize]int   `json:"bySize"`
	ByKind          map[ContainerKind]int   `json:"byKind"`
	TotalTEU        float64                 `json:"totalTeu"`
	ReeferCount     int                     `json:"reeferCount"`
	ReeferPluggedIn int                     `json:"reeferPluggedIn"`
	HazmatCount     int                     `json:"hazmatCount"`
	OnHoldCount     int                     `json:"onHoldCount"`
	OverdueCount    int                     `json:"overdueCount"`
}
