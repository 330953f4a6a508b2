package ports

import (
	"context"

	"github.com/netscenehq/netscene/internal/core/domain"
)

// TopologyCollector supplies raw device, interface and connection records
// from the vendor control plane. Results are best-effort and may be
// incomplete; only Connect failure is fatal to a workflow run.
type TopologyCollector interface {
	// Connect verifies the control plane is reachable and authenticates.
	Connect(ctx context.Context) error
	// Collect returns a best-effort snapshot of the current topology.
	Collect(ctx context.Context) (domain.RawCollection, error)
}

// VendorResolver resolves a hardware address to a manufacturer name.
// Implementations return an error both for unknown prefixes and for
// exhausted lookup chains; callers treat any failure as "unknown vendor",
// never as fatal.
type VendorResolver interface {
	Resolve(ctx context.Context, mac string) (string, error)
}

// VisualProvider maps a device type to its icon/model references.
// A missing mapping is not an error; implementations return a default.
type VisualProvider interface {
	Visual(t domain.DeviceType) domain.VisualMeta
}

// SceneStore persists completed run snapshots. Used by the export step as a
// best-effort collaborator; failures degrade to item errors.
type SceneStore interface {
	SaveSnapshot(ctx context.Context, report domain.WorkflowReport) error
}

// ScenePublisher pushes freshly normalized scenes to listening front-ends.
type ScenePublisher interface {
	PublishScene(scene domain.Scene)
}
