package scene

import (
	"fmt"
	"strings"
	"time"

	"github.com/netscenehq/netscene/internal/adapters/oui"
	"github.com/netscenehq/netscene/internal/core/domain"
	"github.com/netscenehq/netscene/internal/telemetry"
)

// Stats reports what normalization dropped or merged. Malformed records are
// counted, never raised.
type Stats struct {
	DroppedDevices     int
	DroppedConnections int
	MergedDevices      int
}

// Normalizer turns a raw collection into a canonical Scene: unique devices
// in first-seen order, deduplicated edges, stable identifiers. It is a pure
// function of its input; caching lives in the scenecache layer above.
type Normalizer struct {
	merger *FieldMerger
}

// NewNormalizer creates a Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{merger: NewFieldMerger()}
}

// Normalize builds the minimal "raw" scene from a collection snapshot.
func (n *Normalizer) Normalize(raw domain.RawCollection) (domain.Scene, Stats) {
	var stats Stats

	// refs maps every identifier a source may use (MAC, serial, IP, name)
	// to the canonical device ID, for edge endpoint resolution.
	refs := make(map[string]string)
	index := make(map[string]int) // dedup key -> position in devices
	devices := make([]domain.Device, 0, len(raw.Devices))

	for _, rec := range raw.Devices {
		key := dedupKey(rec)
		if key == "" {
			stats.DroppedDevices++
			telemetry.RecordsDropped.WithLabelValues("device").Inc()
			continue
		}

		if pos, ok := index[key]; ok {
			n.merger.Merge(&devices[pos], rec)
			stats.MergedDevices++
			registerRefs(refs, devices[pos].ID, rec)
			continue
		}

		dev := domain.Device{
			ID:     deviceID(rec),
			Type:   domain.TypeUnknown,
			MAC:    normalizeMAC(rec.MAC),
			Serial: rec.Serial,
			IP:     rec.IP,
			Name:   rec.Name,
		}
		n.merger.Merge(&dev, rec)
		index[key] = len(devices)
		devices = append(devices, dev)
		registerRefs(refs, dev.ID, rec)
	}

	edges := n.buildEdges(raw, refs, &stats)

	telemetry.ScenesBuilt.WithLabelValues("raw").Inc()
	return domain.Scene{
		Devices:     devices,
		Edges:       edges,
		GeneratedAt: time.Now().UTC(),
	}, stats
}

// buildEdges resolves raw connection records (and interface peer reports)
// against the deduplicated device set and collapses duplicates. The merge is
// commutative: result does not depend on observation order.
func (n *Normalizer) buildEdges(raw domain.RawCollection, refs map[string]string, stats *Stats) []domain.Edge {
	conns := make([]domain.RawConnection, 0, len(raw.Connections)+len(raw.Interfaces))
	conns = append(conns, raw.Connections...)

	// Interface peer reports degrade into plain uplink observations.
	for _, iface := range raw.Interfaces {
		if iface.PeerRef == "" {
			continue
		}
		status := domain.StatusInactive
		if iface.Up {
			status = domain.StatusActive
		}
		conns = append(conns, domain.RawConnection{
			FromRef: iface.DeviceRef,
			ToRef:   iface.PeerRef,
			Type:    domain.LinkUplink,
			Status:  status,
		})
	}

	type edgeKey struct{ from, to string }
	merged := make(map[edgeKey]int)
	order := make([]domain.Edge, 0, len(conns))

	for _, conn := range conns {
		fromID, okFrom := resolveRef(refs, conn.FromRef)
		toID, okTo := resolveRef(refs, conn.ToRef)
		if !okFrom || !okTo || fromID == toID {
			stats.DroppedConnections++
			telemetry.RecordsDropped.WithLabelValues("connection").Inc()
			continue
		}

		// Canonical unordered representation.
		if fromID > toID {
			fromID, toID = toID, fromID
		}

		status := conn.Status
		if status == "" {
			status = domain.StatusUnknown
		}
		linkType := conn.Type
		if linkType == "" {
			linkType = domain.LinkUnknown
		}

		key := edgeKey{fromID, toID}
		if pos, ok := merged[key]; ok {
			// Keep the higher-priority status; first non-unknown type wins.
			if status.Rank() > order[pos].Status.Rank() {
				order[pos].Status = status
			}
			if order[pos].Type == domain.LinkUnknown && linkType != domain.LinkUnknown {
				order[pos].Type = linkType
			}
			continue
		}

		merged[key] = len(order)
		order = append(order, domain.Edge{
			From:   fromID,
			To:     toID,
			Type:   linkType,
			Status: status,
		})
	}

	return order
}

// dedupKey returns the identity basis of a raw record: MAC if present, else
// serial, else ip+name composite. Empty means the record is malformed.
func dedupKey(rec domain.RawDevice) string {
	if mac := normalizeMAC(rec.MAC); mac != "" {
		return "mac:" + mac
	}
	if rec.Serial != "" {
		return "serial:" + strings.ToLower(rec.Serial)
	}
	if rec.IP != "" && rec.Name != "" {
		return "ipname:" + rec.IP + "|" + strings.ToLower(rec.Name)
	}
	return ""
}

// deviceID derives the stable scene identifier from the same identity basis
// as dedupKey.
func deviceID(rec domain.RawDevice) string {
	if mac := normalizeMAC(rec.MAC); mac != "" {
		return "dev_" + strings.ReplaceAll(mac, ":", "")
	}
	if rec.Serial != "" {
		return "dev_" + sanitizeID(rec.Serial)
	}
	return "dev_" + sanitizeID(rec.IP+"_"+rec.Name)
}

func registerRefs(refs map[string]string, id string, rec domain.RawDevice) {
	if mac := normalizeMAC(rec.MAC); mac != "" {
		refs[mac] = id
	}
	if rec.Serial != "" {
		refs[strings.ToLower(rec.Serial)] = id
	}
	if rec.IP != "" {
		refs[rec.IP] = id
	}
	if rec.Name != "" {
		refs[strings.ToLower(rec.Name)] = id
	}
}

func resolveRef(refs map[string]string, ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	if mac := normalizeMAC(ref); mac != "" {
		if id, ok := refs[mac]; ok {
			return id, true
		}
	}
	id, ok := refs[strings.ToLower(ref)]
	return id, ok
}

// normalizeMAC returns the lowercase colon-separated form, or "" when the
// value does not parse as a hardware address.
func normalizeMAC(s string) string {
	if s == "" {
		return ""
	}
	mac, err := oui.ParseMAC(s)
	if err != nil {
		return ""
	}
	return mac.String()
}

func sanitizeID(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return fmt.Sprintf("anon-%d", time.Now().UnixNano())
	}
	return b.String()
}
