package testutil

import "github.com/vk/weavego/internal/registry"

// SimpleModule is a test helper for registering ad-hoc descriptors.
type SimpleModule struct {
	Descriptors []registry.Descriptor
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	for _, d := range m.Descriptors {
		r.Register(d)
	}
}
