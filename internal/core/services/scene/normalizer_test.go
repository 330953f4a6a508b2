package scene

import (
	"testing"
	"time"

	"github.com/netscenehq/netscene/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_DedupByMACMergesFields(t *testing.T) {
	n := NewNormalizer()

	raw := domain.RawCollection{
		Devices: []domain.RawDevice{
			{MAC: "F0:9F:C2:AA:BB:CC", Name: "core-ap", Model: "U6-Pro"},
			{MAC: "f0-9f-c2-aa-bb-cc", IP: "10.0.0.5", Firmware: "6.5.28"},
			{MAC: "f0:9f:c2:aa:bb:cc", Name: ""}, // empty fields never overwrite
		},
	}

	s, stats := n.Normalize(raw)
	require.Len(t, s.Devices, 1)
	assert.Equal(t, 2, stats.MergedDevices)

	d := s.Devices[0]
	assert.Equal(t, "dev_f09fc2aabbcc", d.ID)
	assert.Equal(t, "f0:9f:c2:aa:bb:cc", d.MAC)
	assert.Equal(t, "core-ap", d.Name)
	assert.Equal(t, "10.0.0.5", d.IP)
	assert.Equal(t, "U6-Pro", d.Meta(domain.MetaModel))
	assert.Equal(t, "6.5.28", d.Meta(domain.MetaFirmware))
}

func TestNormalize_IdentityFallbacks(t *testing.T) {
	n := NewNormalizer()

	raw := domain.RawCollection{
		Devices: []domain.RawDevice{
			{Serial: "FW123456", Model: "FortiGate 60F"}, // no MAC: serial identity
			{IP: "10.0.0.9", Name: "printer-3f"},         // no MAC/serial: ip+name
			{Model: "ghost"},                             // nothing identifying: dropped
		},
	}

	s, stats := n.Normalize(raw)
	require.Len(t, s.Devices, 2)
	assert.Equal(t, 1, stats.DroppedDevices)
	assert.Equal(t, "dev_fw123456", s.Devices[0].ID)
	assert.Equal(t, "dev_10.0.0.9_printer-3f", s.Devices[1].ID)
}

func TestNormalize_FirstSeenOrderPreserved(t *testing.T) {
	n := NewNormalizer()

	raw := domain.RawCollection{
		Devices: []domain.RawDevice{
			{MAC: "00:00:00:00:00:03", Name: "third"},
			{MAC: "00:00:00:00:00:01", Name: "first"},
			{MAC: "00:00:00:00:00:03", IP: "10.0.0.3"}, // merge, keeps slot
			{MAC: "00:00:00:00:00:02", Name: "second"},
		},
	}

	s, _ := n.Normalize(raw)
	require.Len(t, s.Devices, 3)
	assert.Equal(t, "third", s.Devices[0].Name)
	assert.Equal(t, "first", s.Devices[1].Name)
	assert.Equal(t, "second", s.Devices[2].Name)
}

func TestNormalize_EdgeDedupKeepsHigherPriorityStatus(t *testing.T) {
	n := NewNormalizer()

	raw := domain.RawCollection{
		Devices: []domain.RawDevice{
			{MAC: "00:00:00:00:00:01"},
			{MAC: "00:00:00:00:00:02"},
		},
		Connections: []domain.RawConnection{
			// Same unordered pair observed in both directions.
			{FromRef: "00:00:00:00:00:01", ToRef: "00:00:00:00:00:02", Status: domain.StatusInactive, Type: domain.LinkUplink},
			{FromRef: "00:00:00:00:00:02", ToRef: "00:00:00:00:00:01", Status: domain.StatusActive},
		},
	}

	s, _ := n.Normalize(raw)
	require.Len(t, s.Edges, 1)
	assert.Equal(t, domain.StatusActive, s.Edges[0].Status)
	assert.Equal(t, domain.LinkUplink, s.Edges[0].Type)
	assert.Less(t, s.Edges[0].From, s.Edges[0].To, "endpoints stored in canonical order")
}

func TestNormalize_EdgeStatusPriorityIsOrderIndependent(t *testing.T) {
	n := NewNormalizer()

	devices := []domain.RawDevice{
		{MAC: "00:00:00:00:00:01"},
		{MAC: "00:00:00:00:00:02"},
	}
	conns := []domain.RawConnection{
		{FromRef: "00:00:00:00:00:01", ToRef: "00:00:00:00:00:02", Status: domain.StatusError},
		{FromRef: "00:00:00:00:00:01", ToRef: "00:00:00:00:00:02", Status: domain.StatusActive},
		{FromRef: "00:00:00:00:00:02", ToRef: "00:00:00:00:00:01", Status: domain.StatusUnknown},
	}

	forward, _ := n.Normalize(domain.RawCollection{Devices: devices, Connections: conns})

	reversed := []domain.RawConnection{conns[2], conns[1], conns[0]}
	backward, _ := n.Normalize(domain.RawCollection{Devices: devices, Connections: reversed})

	require.Len(t, forward.Edges, 1)
	require.Len(t, backward.Edges, 1)
	assert.Equal(t, domain.StatusActive, forward.Edges[0].Status)
	assert.Equal(t, forward.Edges[0], backward.Edges[0])
}

func TestNormalize_UnresolvedEndpointsDropped(t *testing.T) {
	n := NewNormalizer()

	raw := domain.RawCollection{
		Devices: []domain.RawDevice{{MAC: "00:00:00:00:00:01"}},
		Connections: []domain.RawConnection{
			{FromRef: "00:00:00:00:00:01", ToRef: "00:00:00:00:00:99"},
			{FromRef: "", ToRef: "00:00:00:00:00:01"},
		},
	}

	s, stats := n.Normalize(raw)
	assert.Empty(t, s.Edges)
	assert.Equal(t, 2, stats.DroppedConnections)
}

func TestNormalize_InterfacePeersBecomeUplinks(t *testing.T) {
	n := NewNormalizer()

	raw := domain.RawCollection{
		Devices: []domain.RawDevice{
			{MAC: "00:00:00:00:00:01", Name: "fw"},
			{MAC: "00:00:00:00:00:02", Name: "sw"},
		},
		Interfaces: []domain.RawInterface{
			{DeviceRef: "fw", Name: "eth1", PeerRef: "sw", Up: true},
		},
	}

	s, _ := n.Normalize(raw)
	require.Len(t, s.Edges, 1)
	assert.Equal(t, domain.LinkUplink, s.Edges[0].Type)
	assert.Equal(t, domain.StatusActive, s.Edges[0].Status)
}

func TestNormalize_SeenTimestamps(t *testing.T) {
	n := NewNormalizer()
	early := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	late := early.Add(2 * time.Hour)

	raw := domain.RawCollection{
		Devices: []domain.RawDevice{
			{MAC: "00:00:00:00:00:01", SeenAt: late},
			{MAC: "00:00:00:00:00:01", SeenAt: early},
		},
	}

	s, _ := n.Normalize(raw)
	require.Len(t, s.Devices, 1)
	assert.Equal(t, early, s.Devices[0].FirstSeen)
	assert.Equal(t, late, s.Devices[0].LastSeen)
}

type stubVisuals struct{}

func (stubVisuals) Visual(t domain.DeviceType) domain.VisualMeta {
	if t == domain.TypeFirewall {
		return domain.VisualMeta{IconRef: "icons/firewall.svg", ModelRef: "models/firewall.glb"}
	}
	return domain.VisualMeta{IconRef: "icons/generic.svg", ModelRef: "models/generic.glb"}
}

func TestEnhance_DoesNotMutateInputAndKeepsOrder(t *testing.T) {
	n := NewNormalizer()
	s, _ := n.Normalize(domain.RawCollection{
		Devices: []domain.RawDevice{
			{MAC: "00:00:00:00:00:01", Name: "fw"},
			{MAC: "00:00:00:00:00:02", Name: "sw"},
		},
	})
	s.Devices[0].Type = domain.TypeFirewall

	enhanced := Enhance(s, stubVisuals{})

	assert.True(t, enhanced.Enhanced)
	require.Len(t, enhanced.Devices, 2)
	assert.Equal(t, "fw", enhanced.Devices[0].Name)
	assert.Equal(t, "icons/firewall.svg", enhanced.Devices[0].Visual.IconRef)
	assert.Equal(t, "icons/generic.svg", enhanced.Devices[1].Visual.IconRef)

	// Original scene untouched.
	assert.False(t, s.Enhanced)
	assert.Nil(t, s.Devices[0].Visual)
}
