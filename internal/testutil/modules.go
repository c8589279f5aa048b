package testutil

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/vk/weavego/internal/registry"
)

// Toggle returns a ReadWrite descriptor claiming attr that adds other to
// the attribute buffer on every Process and reports a mutation. Two toggles
// pointing at each other never converge.
func Toggle(attr, other string) *registry.StaticDescriptor {
	return &registry.StaticDescriptor{
		Name:              "toggle-" + attr,
		Pattern:           regexp.MustCompile("^" + regexp.QuoteMeta(attr) + "$"),
		Access:            registry.ReadWrite,
		MutatesAttributes: true,
		New: func(mc *registry.Context) (registry.StaticModule, error) {
			return &toggle{mc: mc, other: other}, nil
		},
	}
}

type toggle struct {
	mc    *registry.Context
	other string
}

func (t *toggle) Process(ctx context.Context) (bool, error) {
	t.mc.Template.SetAttr(t.other, "on")
	return true, nil
}

func (t *toggle) Update(ctx context.Context) (bool, error) { return false, nil }
func (t *toggle) Cleanup()                                 {}

// Recorder logs the lifecycle calls of the modules it creates, in call
// order, as "<name>:<phase>".
type Recorder struct {
	mu     sync.Mutex
	events []string
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// Reset drops the recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func (r *Recorder) record(name, phase string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf("%s:%s", name, phase))
}

// Descriptor returns a descriptor named name claiming attribute name with
// the given access. Its modules never change anything.
func (r *Recorder) Descriptor(name string, access registry.Access) *registry.StaticDescriptor {
	return &registry.StaticDescriptor{
		Name:    name,
		Pattern: regexp.MustCompile("^" + regexp.QuoteMeta(name) + "$"),
		Access:  access,
		New: func(mc *registry.Context) (registry.StaticModule, error) {
			return &recorded{name: name, rec: r}, nil
		},
	}
}

type recorded struct {
	name string
	rec  *Recorder
}

func (m *recorded) Process(ctx context.Context) (bool, error) {
	m.rec.record(m.name, "process")
	return false, nil
}

func (m *recorded) Update(ctx context.Context) (bool, error) {
	m.rec.record(m.name, "update")
	return false, nil
}

func (m *recorded) Cleanup() {
	m.rec.record(m.name, "cleanup")
}
