package domain

import "time"

// LinkType defines the nature of a connection between two scene nodes.
type LinkType string

const (
	LinkUplink   LinkType = "uplink"
	LinkWireless LinkType = "wireless"
	LinkVirtual  LinkType = "virtual"
	LinkUnknown  LinkType = "unknown"
)

// EdgeStatus is the observed state of a link.
type EdgeStatus string

const (
	StatusActive   EdgeStatus = "active"
	StatusError    EdgeStatus = "error"
	StatusInactive EdgeStatus = "inactive"
	StatusUnknown  EdgeStatus = "unknown"
)

// statusRank orders edge statuses for the bidirectional collapse rule:
// active > error > inactive > unknown.
var statusRank = map[EdgeStatus]int{
	StatusActive:   3,
	StatusError:    2,
	StatusInactive: 1,
	StatusUnknown:  0,
}

// Rank returns the collapse priority of the status. Unlisted statuses
// rank lowest.
func (s EdgeStatus) Rank() int {
	return statusRank[s]
}

// Edge is a deduplicated connection between two devices in a Scene.
// From and To are device IDs stored in lexicographic order so that the
// unordered endpoint pair has a single canonical representation.
type Edge struct {
	From   string     `json:"from"`
	To     string     `json:"to"`
	Type   LinkType   `json:"type"`
	Status EdgeStatus `json:"status"`
}

// Scene is the normalized output graph consumed by rendering collaborators.
// Devices keep discovery order; every edge endpoint references a device ID
// present in Devices.
type Scene struct {
	Devices     []Device  `json:"devices"`
	Edges       []Edge    `json:"edges"`
	GeneratedAt time.Time `json:"generated_at"`
	Enhanced    bool      `json:"enhanced,omitempty"`
}

// Device returns the device with the given ID, if present.
func (s Scene) Device(id string) (Device, bool) {
	for _, d := range s.Devices {
		if d.ID == id {
			return d, true
		}
	}
	return Device{}, false
}

// Clone returns a deep copy of the scene. Cached scenes are handed out
// read-only; callers that need to mutate (e.g. the enhancer) work on a copy.
func (s Scene) Clone() Scene {
	out := Scene{
		Devices:     make([]Device, len(s.Devices)),
		Edges:       make([]Edge, len(s.Edges)),
		GeneratedAt: s.GeneratedAt,
		Enhanced:    s.Enhanced,
	}
	copy(out.Edges, s.Edges)
	for i, d := range s.Devices {
		if d.Metadata != nil {
			meta := make(map[string]string, len(d.Metadata))
			for k, v := range d.Metadata {
				meta[k] = v
			}
			d.Metadata = meta
		}
		if d.Visual != nil {
			v := *d.Visual
			d.Visual = &v
		}
		out.Devices[i] = d
	}
	return out
}
