package oui

import (
	"bufio"
	"context"
	"os"
	"strings"
	"sync"
)

// StaticProvider serves vendor lookups from an in-memory map. It is always
// the first tier: known prefixes resolve without any network cost.
type StaticProvider struct {
	vendors map[string]string
	mu      sync.RWMutex
}

// NewStaticProvider creates a static provider seeded with the given table.
// Pass CommonOUIs for the curated default set.
func NewStaticProvider(vendors map[string]string) *StaticProvider {
	table := make(map[string]string, len(vendors))
	for k, v := range vendors {
		table[normalizePrefix(k)] = v
	}
	return &StaticProvider{vendors: table}
}

// Name implements Provider.
func (s *StaticProvider) Name() string { return "static" }

// Lookup looks up a vendor in the static map.
func (s *StaticProvider) Lookup(ctx context.Context, mac MACAddress) (string, error) {
	s.mu.RLock()
	vendor, ok := s.vendors[mac.OUI()]
	s.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}
	return vendor, nil
}

// LoadFromFile merges OUI data from a text file into the table.
// Supports format: "XX:XX:XX Vendor Name" or "XX-XX-XX   Vendor Name".
func (s *StaticProvider) LoadFromFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	loaded := make(map[string]string)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) < 8 || strings.HasPrefix(line, "#") {
			continue
		}

		prefix := normalizePrefix(line[0:8])
		vendor := ""
		if len(line) > 8 {
			vendor = strings.TrimSpace(line[8:])
		}
		if isValidPrefix(prefix) && vendor != "" {
			loaded[prefix] = vendor
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	for k, v := range loaded {
		s.vendors[k] = v
	}
	s.mu.Unlock()
	return nil
}

// Close is a no-op for the static provider.
func (s *StaticProvider) Close() error { return nil }

func normalizePrefix(p string) string {
	return strings.ToUpper(strings.ReplaceAll(p, "-", ":"))
}

func isValidPrefix(s string) bool {
	if len(s) != 8 {
		return false
	}
	return s[2] == ':' && s[5] == ':'
}

// CommonOUIs is the curated built-in prefix table. It covers the vendors a
// typical small network actually contains; the sqlite registry and the
// remote tiers handle the long tail.
var CommonOUIs = map[string]string{
	// Network infrastructure
	"00:1E:BD": "Cisco Systems",
	"00:0B:86": "Aruba Networks",
	"F0:9F:C2": "Ubiquiti Inc",
	"74:AC:B9": "Ubiquiti Inc",
	"FC:EC:DA": "Ubiquiti Inc",
	"B4:FB:E4": "Ubiquiti Inc",
	"50:C7:BF": "TP-Link",
	"A0:63:91": "Netgear",
	"00:14:BF": "Linksys",
	"00:17:9A": "D-Link",
	"00:1F:C6": "ASUSTek Computer",
	"00:09:0F": "Fortinet",
	"00:1B:17": "Palo Alto Networks",
	"00:0C:29": "VMware",
	"52:54:00": "QEMU",

	// Clients and consumer electronics
	"00:17:F2": "Apple",
	"F4:5C:89": "Apple",
	"00:12:FB": "Samsung Electronics",
	"F4:F5:D8": "Google",
	"FC:A6:67": "Amazon Technologies",
	"34:CE:00": "Xiaomi Communications",
	"00:E0:FC": "Huawei Technologies",
	"00:13:02": "Intel Corporate",
	"00:04:56": "Motorola",
	"00:13:A9": "Sony",
	"00:1C:62": "LG Electronics",
	"B8:27:EB": "Raspberry Pi Foundation",
	"DC:A6:32": "Raspberry Pi Trading",

	// Printers, phones, cameras
	"00:1E:0B": "Hewlett Packard",
	"00:00:48": "Seiko Epson",
	"00:00:85": "Canon",
	"00:80:92": "Brother Industries",
	"00:04:F2": "Polycom",
	"64:16:7F": "Polycom",
	"00:04:0D": "Avaya",
	"00:1B:4F": "Avaya",
	"00:0F:7C": "ACTi Corporation",
	"00:40:8C": "Axis Communications",
	"BC:AD:28": "Hangzhou Hikvision",
	"9C:8E:CD": "Amcrest Technologies",

	// Servers and storage
	"D0:94:66": "Dell",
	"00:08:9B": "Synology",
	"00:D0:B8": "QNAP Systems",
}
