package scene

import "github.com/netscenehq/netscene/internal/core/domain"

// FieldMerger folds a later raw record into an already-deduplicated device.
// First-seen wins for conflicting fields; later records only fill fields
// that are still empty. Never overwrites a populated field with an empty one.
type FieldMerger struct{}

// NewFieldMerger creates a new FieldMerger.
func NewFieldMerger() *FieldMerger {
	return &FieldMerger{}
}

// Merge updates 'existing' with fields from 'rec'.
func (m *FieldMerger) Merge(existing *domain.Device, rec domain.RawDevice) {
	if existing.MAC == "" {
		existing.MAC = normalizeMAC(rec.MAC)
	}
	if existing.Serial == "" {
		existing.Serial = rec.Serial
	}
	if existing.IP == "" {
		existing.IP = rec.IP
	}
	if existing.Name == "" {
		existing.Name = rec.Name
	}

	m.mergeMeta(existing, domain.MetaModel, rec.Model)
	m.mergeMeta(existing, domain.MetaHostname, rec.Hostname)
	m.mergeMeta(existing, domain.MetaFirmware, rec.Firmware)
	for k, v := range rec.Extra {
		m.mergeMeta(existing, k, v)
	}

	if !rec.SeenAt.IsZero() {
		if existing.FirstSeen.IsZero() || rec.SeenAt.Before(existing.FirstSeen) {
			existing.FirstSeen = rec.SeenAt
		}
		if rec.SeenAt.After(existing.LastSeen) {
			existing.LastSeen = rec.SeenAt
		}
	}
}

func (m *FieldMerger) mergeMeta(d *domain.Device, key, value string) {
	if value == "" {
		return
	}
	if d.Metadata == nil {
		d.Metadata = make(map[string]string)
	}
	if _, ok := d.Metadata[key]; !ok {
		d.Metadata[key] = value
	}
}
