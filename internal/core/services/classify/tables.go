package classify

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/netscenehq/netscene/internal/core/domain"
)

// KeywordRule maps a vendor-name substring to a device type. Rules are
// evaluated in priority order (higher first), then by declaration order, so
// classification is fully deterministic.
type KeywordRule struct {
	Pattern  string            `json:"pattern"`
	Type     domain.DeviceType `json:"type"`
	Priority int               `json:"priority"`
}

// Tables holds the three classification tables. Loaded once at startup and
// treated as immutable afterwards.
type Tables struct {
	// Models maps a lowercase model/hostname substring to a device family.
	Models map[string]domain.DeviceType `json:"models"`
	// OUITypes maps a manufacturer prefix directly to a type, for vendors
	// that only build one kind of device.
	OUITypes map[string]domain.DeviceType `json:"oui_types"`
	// Keywords is the ordered vendor-name keyword table.
	Keywords []KeywordRule `json:"keywords"`
	// Version tags the table set for reports and debugging.
	Version string `json:"version"`
}

// DefaultTables returns the built-in curated table set.
func DefaultTables() *Tables {
	t := &Tables{
		Version: "builtin-1",
		Models: map[string]domain.DeviceType{
			// firewalls / gateways
			"uxg":       domain.TypeFirewall,
			"udm":       domain.TypeFirewall,
			"usg":       domain.TypeFirewall,
			"fortigate": domain.TypeFirewall,
			"pa-":       domain.TypeFirewall,
			"opnsense":  domain.TypeFirewall,
			"pfsense":   domain.TypeFirewall,
			// switches
			"usw":      domain.TypeSwitch,
			"catalyst": domain.TypeSwitch,
			"gs308":    domain.TypeSwitch,
			"sg350":    domain.TypeSwitch,
			// access points
			"uap":     domain.TypeAccessPoint,
			"u6-lite": domain.TypeAccessPoint,
			"u6-pro":  domain.TypeAccessPoint,
			"u7-pro":  domain.TypeAccessPoint,
			"eap":     domain.TypeAccessPoint,
			// storage
			"diskstation": domain.TypeNAS,
			"ts-453":      domain.TypeNAS,
		},
		OUITypes: map[string]domain.DeviceType{
			"00:40:8C": domain.TypeCamera, // Axis only builds cameras
			"BC:AD:28": domain.TypeCamera,
			"9C:8E:CD": domain.TypeCamera,
			"00:04:F2": domain.TypePhone, // Polycom
			"64:16:7F": domain.TypePhone,
			"00:80:92": domain.TypePrinter, // Brother
			"00:00:48": domain.TypePrinter, // Epson
			"00:08:9B": domain.TypeNAS,     // Synology
			"00:D0:B8": domain.TypeNAS,     // QNAP
		},
		Keywords: []KeywordRule{
			{Pattern: "fortinet", Type: domain.TypeFirewall, Priority: 90},
			{Pattern: "palo alto", Type: domain.TypeFirewall, Priority: 90},
			{Pattern: "ubiquiti", Type: domain.TypeAccessPoint, Priority: 50},
			{Pattern: "aruba", Type: domain.TypeAccessPoint, Priority: 50},
			{Pattern: "ruckus", Type: domain.TypeAccessPoint, Priority: 50},
			{Pattern: "polycom", Type: domain.TypePhone, Priority: 80},
			{Pattern: "avaya", Type: domain.TypePhone, Priority: 80},
			{Pattern: "yealink", Type: domain.TypePhone, Priority: 80},
			{Pattern: "grandstream", Type: domain.TypePhone, Priority: 80},
			{Pattern: "hewlett packard", Type: domain.TypePrinter, Priority: 60},
			{Pattern: "epson", Type: domain.TypePrinter, Priority: 70},
			{Pattern: "canon", Type: domain.TypePrinter, Priority: 70},
			{Pattern: "brother", Type: domain.TypePrinter, Priority: 70},
			{Pattern: "lexmark", Type: domain.TypePrinter, Priority: 70},
			{Pattern: "axis", Type: domain.TypeCamera, Priority: 70},
			{Pattern: "hikvision", Type: domain.TypeCamera, Priority: 70},
			{Pattern: "dahua", Type: domain.TypeCamera, Priority: 70},
			{Pattern: "amcrest", Type: domain.TypeCamera, Priority: 70},
			{Pattern: "synology", Type: domain.TypeNAS, Priority: 70},
			{Pattern: "qnap", Type: domain.TypeNAS, Priority: 70},
			{Pattern: "vmware", Type: domain.TypeServer, Priority: 60},
			{Pattern: "supermicro", Type: domain.TypeServer, Priority: 60},
			{Pattern: "dell", Type: domain.TypeServer, Priority: 30},
			{Pattern: "raspberry", Type: domain.TypeIoT, Priority: 50},
			{Pattern: "espressif", Type: domain.TypeIoT, Priority: 70},
			{Pattern: "tuya", Type: domain.TypeIoT, Priority: 70},
			{Pattern: "sonos", Type: domain.TypeIoT, Priority: 70},
			{Pattern: "amazon", Type: domain.TypeIoT, Priority: 40},
			{Pattern: "apple", Type: domain.TypeClient, Priority: 20},
			{Pattern: "samsung", Type: domain.TypeClient, Priority: 20},
			{Pattern: "intel", Type: domain.TypeClient, Priority: 10},
		},
	}
	t.normalize()
	return t
}

// LoadTables loads a table set from a JSON file and merges it over the
// builtin defaults. File entries win on conflict.
func LoadTables(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read classification tables: %w", err)
	}

	var loaded Tables
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse classification tables: %w", err)
	}

	t := DefaultTables()
	if loaded.Version != "" {
		t.Version = loaded.Version
	}
	for k, v := range loaded.Models {
		t.Models[strings.ToLower(k)] = v
	}
	for k, v := range loaded.OUITypes {
		t.OUITypes[strings.ToUpper(k)] = v
	}
	t.Keywords = append(t.Keywords, loaded.Keywords...)
	t.normalize()
	return t, nil
}

// normalize lowercases patterns and sorts keywords by priority (stable, so
// declaration order breaks ties).
func (t *Tables) normalize() {
	for i := range t.Keywords {
		t.Keywords[i].Pattern = strings.ToLower(t.Keywords[i].Pattern)
	}
	sort.SliceStable(t.Keywords, func(i, j int) bool {
		return t.Keywords[i].Priority > t.Keywords[j].Priority
	})
}
