// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface, which defines its name, an
// enable switch and route registration:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager keeps the registry. Register adds features and LoadAll loads
// the enabled ones in registration order, stopping at the first failure.
// This keeps features like 'scene' and 'assets' testable in isolation.
package loader
