package domain

import "time"

// RawDevice is an unnormalized device record as delivered by the
// control-plane collector. Any field may be empty; records carrying no
// identifying field at all are dropped by the normalizer.
type RawDevice struct {
	MAC      string            `json:"mac,omitempty"`
	Serial   string            `json:"serial,omitempty"`
	IP       string            `json:"ip,omitempty"`
	Name     string            `json:"name,omitempty"`
	Model    string            `json:"model,omitempty"`
	Hostname string            `json:"hostname,omitempty"`
	Firmware string            `json:"firmware,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
	SeenAt   time.Time         `json:"seen_at,omitempty"`
}

// RawConnection is an unnormalized link observation. Endpoints reference
// whatever identifier the source happened to report (MAC, serial or IP);
// the normalizer resolves them against the deduplicated device set.
type RawConnection struct {
	FromRef string     `json:"from"`
	ToRef   string     `json:"to"`
	Type    LinkType   `json:"type,omitempty"`
	Status  EdgeStatus `json:"status,omitempty"`
}

// RawInterface describes one port/radio of a device, used to attach
// connection observations reported per interface.
type RawInterface struct {
	DeviceRef string `json:"device"`
	Name      string `json:"name"`
	PeerRef   string `json:"peer,omitempty"`
	Up        bool   `json:"up"`
}

// RawCollection is the best-effort snapshot returned by a collector.
type RawCollection struct {
	Devices     []RawDevice     `json:"devices"`
	Interfaces  []RawInterface  `json:"interfaces,omitempty"`
	Connections []RawConnection `json:"connections"`
	CollectedAt time.Time       `json:"collected_at"`
}
