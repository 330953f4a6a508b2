package domain

import "time"

// DeviceType is the closed classification assigned to a discovered device.
type DeviceType string

const (
	TypeFirewall    DeviceType = "firewall"
	TypeSwitch      DeviceType = "switch"
	TypeAccessPoint DeviceType = "access_point"
	TypeClient      DeviceType = "client"
	TypeServer      DeviceType = "server"
	TypePrinter     DeviceType = "printer"
	TypePhone       DeviceType = "phone"
	TypeCamera      DeviceType = "camera"
	TypeNAS         DeviceType = "nas"
	TypeIoT         DeviceType = "iot"
	TypeUnknown     DeviceType = "unknown"
)

// Confidence reflects which classification tier produced the type.
// The value is monotonic in rule priority so callers can compare tiers.
type Confidence int

const (
	ConfidenceNone    Confidence = 0  // fallback, nothing matched
	ConfidenceKeyword Confidence = 40 // vendor-name keyword match
	ConfidenceOUI     Confidence = 70 // curated OUI -> type table
	ConfidenceExact   Confidence = 95 // model/hostname match
)

// Device represents one discovered network entity inside a Scene.
type Device struct {
	ID         string     `json:"id"`
	MAC        string     `json:"mac,omitempty"` // normalized lowercase, colon separated
	Serial     string     `json:"serial,omitempty"`
	IP         string     `json:"ip,omitempty"`
	Name       string     `json:"name,omitempty"`
	VendorName string     `json:"vendor,omitempty"` // resolved manufacturer
	Type       DeviceType `json:"type"`
	Confidence Confidence `json:"confidence"`

	// Free-form auxiliary fields (hostname, model, firmware...).
	Metadata map[string]string `json:"metadata,omitempty"`

	FirstSeen time.Time `json:"first_seen,omitempty"`
	LastSeen  time.Time `json:"last_seen,omitempty"`

	// Visual overlay, populated only in the enhanced scene.
	Visual *VisualMeta `json:"visual,omitempty"`
}

// Meta returns a metadata field, empty string if absent.
func (d Device) Meta(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}

// Well-known metadata keys filled by the collector.
const (
	MetaHostname = "hostname"
	MetaModel    = "model"
	MetaFirmware = "firmware"
)
