package domain

// VisualMeta references the icon and 3D model assets the front-end renders
// for a device type. Asset resolution and file formats live outside the core.
type VisualMeta struct {
	IconRef  string `json:"icon"`
	ModelRef string `json:"model"`
}
