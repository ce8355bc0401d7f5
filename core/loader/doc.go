// Package loader registers and loads features.
//
// Each feature implements Feature and owns its routes. The Manager loads
// enabled features in registration order and refuses duplicate names.
//
//	mgr := loader.NewManager(logg)
//	mgr.Register(locks.NewFeature(registry, logg))
//	if err := mgr.LoadAll(app); err != nil { ... }
package loader
