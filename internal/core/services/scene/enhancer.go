package scene

import (
	"github.com/netscenehq/netscene/internal/core/domain"
	"github.com/netscenehq/netscene/internal/core/ports"
	"github.com/netscenehq/netscene/internal/telemetry"
)

// Enhance overlays icon/model metadata onto a copy of the scene. The input
// scene is never mutated, so cached raw scenes stay canonical; device order
// is preserved across the transform.
func Enhance(s domain.Scene, visuals ports.VisualProvider) domain.Scene {
	out := s.Clone()
	for i := range out.Devices {
		v := visuals.Visual(out.Devices[i].Type)
		out.Devices[i].Visual = &v
	}
	out.Enhanced = true
	telemetry.ScenesBuilt.WithLabelValues("enhanced").Inc()
	return out
}
