// Package visual maps device types to renderer assets (2D icon and 3D
// model references).
package visual

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/netscenehq/netscene/internal/core/domain"
)

// Catalog resolves a VisualMeta for each device type. Unknown types fall
// back to a default entry so enrichment never fails on a missing mapping.
// It implements ports.VisualProvider.
type Catalog struct {
	mu       sync.RWMutex
	entries  map[domain.DeviceType]domain.VisualMeta
	fallback domain.VisualMeta
}

type catalogFile struct {
	Entries map[string]domain.VisualMeta `json:"entries"`
	Default *domain.VisualMeta           `json:"default,omitempty"`
}

// NewCatalog returns the builtin asset catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		entries: map[domain.DeviceType]domain.VisualMeta{
			domain.TypeFirewall:    {IconRef: "icons/firewall.svg", ModelRef: "models/firewall.glb"},
			domain.TypeSwitch:      {IconRef: "icons/switch.svg", ModelRef: "models/switch.glb"},
			domain.TypeAccessPoint: {IconRef: "icons/access_point.svg", ModelRef: "models/access_point.glb"},
			domain.TypeClient:      {IconRef: "icons/client.svg", ModelRef: "models/client.glb"},
			domain.TypeServer:      {IconRef: "icons/server.svg", ModelRef: "models/server.glb"},
			domain.TypePrinter:     {IconRef: "icons/printer.svg", ModelRef: "models/printer.glb"},
			domain.TypePhone:       {IconRef: "icons/phone.svg", ModelRef: "models/phone.glb"},
			domain.TypeCamera:      {IconRef: "icons/camera.svg", ModelRef: "models/camera.glb"},
			domain.TypeNAS:         {IconRef: "icons/nas.svg", ModelRef: "models/nas.glb"},
			domain.TypeIoT:         {IconRef: "icons/iot.svg", ModelRef: "models/iot.glb"},
		},
		fallback: domain.VisualMeta{IconRef: "icons/unknown.svg", ModelRef: "models/unknown.glb"},
	}
}

// LoadCatalog reads a JSON catalog and overlays it on the builtin entries,
// so a file only needs to list the types it wants to restyle.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read visual catalog: %w", err)
	}
	var f catalogFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse visual catalog: %w", err)
	}

	c := NewCatalog()
	c.mu.Lock()
	defer c.mu.Unlock()
	for t, v := range f.Entries {
		c.entries[domain.DeviceType(t)] = v
	}
	if f.Default != nil {
		c.fallback = *f.Default
	}
	return c, nil
}

// Visual returns the assets for a device type, or the fallback entry when
// the type has no mapping.
func (c *Catalog) Visual(t domain.DeviceType) domain.VisualMeta {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.entries[t]; ok {
		return v
	}
	return c.fallback
}
