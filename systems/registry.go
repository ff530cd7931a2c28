// Package systems contains the ECS systems that run alongside the character
// controller: ground probing, rigid-body solving and cleanup.
package systems

// SystemInfo describes a simulation system for UI display.
type SystemInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this system does
	Category    string // Grouping (e.g., "core", "visual", "ai")
}

// SystemRegistry holds metadata about all systems.
// This centralizes system naming so the UI and perf tracker stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
}

// NewSystemRegistry creates a registry with all known systems.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds all known systems to the registry.
// Update this when adding new systems.
func (r *SystemRegistry) registerDefaults() {
	// Character controller, in frame order
	r.Register(SystemInfo{ID: "input", Name: "Input", Description: "Translates keys and camera yaw into intents", Category: "controller"})
	r.Register(SystemInfo{ID: "ground", Name: "Ground", Description: "Shape casts down and classifies grounded bodies", Category: "controller"})
	r.Register(SystemInfo{ID: "movement", Name: "Movement", Description: "Applies move and jump intents", Category: "controller"})
	r.Register(SystemInfo{ID: "gravity", Name: "Gravity", Description: "Applies per-body controller gravity", Category: "controller"})
	r.Register(SystemInfo{ID: "damping", Name: "Damping", Description: "Decays horizontal controller velocity", Category: "controller"})

	// Physics
	r.Register(SystemInfo{ID: "solver", Name: "Solver", Description: "Integrates bodies and resolves contacts", Category: "physics"})

	// Presentation
	r.Register(SystemInfo{ID: "camera", Name: "Camera", Description: "Moves the orbit camera to the player", Category: "visual"})

	// Cleanup
	r.Register(SystemInfo{ID: "cleanup", Name: "Cleanup", Description: "Removes bodies that fell out of the world", Category: "core"})
	r.Register(SystemInfo{ID: "telemetry", Name: "Telemetry", Description: "Samples controller state", Category: "internal"})
}

// Register adds a system to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
}

// ByCategory returns systems filtered by category.
func (r *SystemRegistry) ByCategory(category string) []SystemInfo {
	var result []SystemInfo
	for _, info := range r.systems {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// Categories returns all unique categories.
func (r *SystemRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, info := range r.systems {
		if !seen[info.Category] {
			seen[info.Category] = true
			cats = append(cats, info.Category)
		}
	}
	return cats
}
