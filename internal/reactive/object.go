// Package reactive provides the observable data object a component renders
// from. Every write that actually changes a value is announced to the
// subscribers; the object does not decide how those notifications are
// batched, that is the update scheduler's job.
package reactive

import (
	"sort"
	"sync"

	"github.com/zclconf/go-cty/cty"
)

// Absent is reported as Old for newly created properties and as New for
// deleted ones.
var Absent = cty.NullVal(cty.DynamicPseudoType)

// Change describes a single property write.
type Change struct {
	Key string
	Old cty.Value
	New cty.Value
}

// Object is a flat map of top-level properties holding cty values.
//
// Reads and writes are guarded so that a value can be inspected from a test
// goroutine, but notifications run synchronously on the writing goroutine,
// which must be the component's host loop.
type Object struct {
	mu     sync.RWMutex
	values map[string]cty.Value
	subs   map[int]func(Change)
	order  []int
	nextID int
}

// New creates an object seeded with the given values.
func New(initial map[string]cty.Value) *Object {
	o := &Object{
		values: make(map[string]cty.Value, len(initial)),
		subs:   make(map[int]func(Change)),
	}
	for k, v := range initial {
		o.values[k] = v
	}
	return o
}

// Get returns the value of a property.
func (o *Object) Get(key string) (cty.Value, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.values[key]
	return v, ok
}

// Set writes a property and notifies subscribers when the value changed.
func (o *Object) Set(key string, value cty.Value) {
	o.mu.Lock()
	old, existed := o.values[key]
	if existed && old.RawEquals(value) {
		o.mu.Unlock()
		return
	}
	if !existed {
		old = Absent
	}
	o.values[key] = value
	subs := o.snapshotSubs()
	o.mu.Unlock()

	notify(subs, Change{Key: key, Old: old, New: value})
}

// SetGo converts a native Go value and writes it.
func (o *Object) SetGo(key string, value any) error {
	v, err := FromGo(value)
	if err != nil {
		return err
	}
	o.Set(key, v)
	return nil
}

// Delete removes a property and notifies subscribers if it existed.
func (o *Object) Delete(key string) {
	o.mu.Lock()
	old, existed := o.values[key]
	if !existed {
		o.mu.Unlock()
		return
	}
	delete(o.values, key)
	subs := o.snapshotSubs()
	o.mu.Unlock()

	notify(subs, Change{Key: key, Old: old, New: Absent})
}

// Keys returns the property names in sorted order.
func (o *Object) Keys() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	keys := make([]string, 0, len(o.values))
	for k := range o.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Variables returns a copy of all properties, suitable for an evaluation
// context.
func (o *Object) Variables() map[string]cty.Value {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make(map[string]cty.Value, len(o.values))
	for k, v := range o.values {
		out[k] = v
	}
	return out
}

// Subscribe registers fn for every future change and returns a function
// that removes the subscription. Calling the returned function twice is safe.
func (o *Object) Subscribe(fn func(Change)) func() {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs[id] = fn
	o.order = append(o.order, id)
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			delete(o.subs, id)
			for i, existing := range o.order {
				if existing == id {
					o.order = append(o.order[:i], o.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Subscribers returns the number of live subscriptions.
func (o *Object) Subscribers() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.subs)
}

// snapshotSubs must be called with the lock held.
func (o *Object) snapshotSubs() []func(Change) {
	out := make([]func(Change), 0, len(o.order))
	for _, id := range o.order {
		out = append(out, o.subs[id])
	}
	return out
}

func notify(subs []func(Change), c Change) {
	for _, fn := range subs {
		fn(c)
	}
}
