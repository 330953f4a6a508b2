package controller

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/netscenehq/netscene/internal/core/domain"
)

// Common OUI prefixes so mock MACs resolve through the static lookup tier.
var mockVendorPrefixes = []struct {
	vendor string
	prefix string
}{
	{"Apple", "00:17:F2"},
	{"Samsung", "00:12:FB"},
	{"Cisco", "00:1E:BD"},
	{"TP-Link", "50:C7:BF"},
	{"Netgear", "A0:63:91"},
	{"Intel", "00:13:02"},
	{"Amazon", "FC:A6:67"},
	{"Axis", "00:40:8C"},
}

var mockClientNames = []string{
	"iPhone 14 Pro", "MacBook Air", "Galaxy S22", "ThinkPad X1",
	"Pixel 7", "iPad Pro", "Echo Dot", "Nest Cam", "Office Printer",
	"Conference Phone", "Smart TV", "PS5",
}

// MockCollector generates a deterministic synthetic topology: one gateway,
// a couple of switches, access points hanging off the switches and clients
// hanging off everything. Same seed, same collection. The shared rand.Rand
// is not concurrency safe, so all state sits behind one mutex; concurrent
// refreshes of a mock scene serialize here.
type MockCollector struct {
	mu       sync.Mutex
	rand     *rand.Rand
	clients  int
	failures int // Connect failures to simulate before succeeding
}

// NewMockCollector seeds a generator. clients caps the synthetic client
// count (0 means a default of 12).
func NewMockCollector(seed int64, clients int) *MockCollector {
	if clients <= 0 {
		clients = 12
	}
	return &MockCollector{
		rand:    rand.New(rand.NewSource(seed)),
		clients: clients,
	}
}

// FailConnects makes the next n Connect calls fail, for exercising the
// retry path in development.
func (m *MockCollector) FailConnects(n int) {
	m.mu.Lock()
	m.failures = n
	m.mu.Unlock()
}

func (m *MockCollector) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return fmt.Errorf("mock controller: simulated connect failure")
	}
	return nil
}

func (m *MockCollector) Collect(ctx context.Context) (domain.RawCollection, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawCollection{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	col := domain.RawCollection{CollectedAt: now}

	gw := m.mac(2) // Cisco prefix keeps the gateway resolvable
	col.Devices = append(col.Devices, domain.RawDevice{
		MAC: gw, IP: "10.0.0.1", Name: "gateway", Model: "UXG-Pro", SeenAt: now,
	})

	var uplinks []string
	for i := 0; i < 2; i++ {
		sw := m.mac(2)
		col.Devices = append(col.Devices, domain.RawDevice{
			MAC:    sw,
			IP:     fmt.Sprintf("10.0.0.%d", 2+i),
			Name:   fmt.Sprintf("switch-%d", i+1),
			Model:  "USW-24-PoE",
			SeenAt: now,
		})
		col.Connections = append(col.Connections, domain.RawConnection{
			FromRef: sw, ToRef: gw, Type: domain.LinkUplink, Status: domain.StatusActive,
		})
		uplinks = append(uplinks, sw)
	}
	for i := 0; i < 3; i++ {
		ap := m.mac(3) // TP-Link prefix
		col.Devices = append(col.Devices, domain.RawDevice{
			MAC:    ap,
			IP:     fmt.Sprintf("10.0.0.%d", 10+i),
			Name:   fmt.Sprintf("ap-%d", i+1),
			Model:  "U6-Pro",
			SeenAt: now,
		})
		parent := uplinks[i%len(uplinks)]
		col.Connections = append(col.Connections, domain.RawConnection{
			FromRef: ap, ToRef: parent, Type: domain.LinkUplink, Status: domain.StatusActive,
		})
		uplinks = append(uplinks, ap)
	}

	for i := 0; i < m.clients; i++ {
		vi := m.rand.Intn(len(mockVendorPrefixes))
		mac := m.mac(vi)
		name := mockClientNames[m.rand.Intn(len(mockClientNames))]
		col.Devices = append(col.Devices, domain.RawDevice{
			MAC:      mac,
			IP:       fmt.Sprintf("10.0.1.%d", 10+i),
			Name:     name,
			Hostname: fmt.Sprintf("%s-%d", sanitizeHostname(name), i),
			SeenAt:   now,
		})
		parent := uplinks[m.rand.Intn(len(uplinks))]
		link := domain.LinkWireless
		status := domain.StatusActive
		if m.rand.Intn(10) == 0 {
			status = domain.StatusInactive
		}
		col.Connections = append(col.Connections, domain.RawConnection{
			FromRef: mac, ToRef: parent, Type: link, Status: status,
		})
	}
	return col, nil
}

func (m *MockCollector) mac(vendorIdx int) string {
	p := mockVendorPrefixes[vendorIdx%len(mockVendorPrefixes)]
	return fmt.Sprintf("%s:%02X:%02X:%02X",
		p.prefix, m.rand.Intn(256), m.rand.Intn(256), m.rand.Intn(256))
}

func sanitizeHostname(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+32)
		case r == ' ':
			out = append(out, '-')
		}
	}
	return string(out)
}
