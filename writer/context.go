// seehuhn.de/go/cos - the object layer of PDF files
// Copyright (C) 2025  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package writer

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"seehuhn.de/go/cos"
)

// ErrNotTrackable is returned when an object number is requested for a
// value which has no identity, like an integer or a name.
var ErrNotTrackable = errors.New("object has no identity")

// A Context records the object numbers assigned during one write session.
//
// Objects are identified by their address in memory, not by their value:
// two structurally equal dictionaries which are distinct instances get
// distinct numbers.  A [*cos.Indirect] which wraps a dictionary, array or
// stream shares the identity of the wrapped container.  [cos.Reference]
// values found in a document which is being copied are identified by their
// value.
//
// A Context can be used concurrently from several goroutines.
type Context struct {
	mu      sync.Mutex
	entries map[cos.Object]*entry
	next    uint32
}

type entry struct {
	ref   cos.Reference // 0 if no number is assigned yet
	obj   cos.Object    // the object written for this entry
	state visitState
}

type visitState int

const (
	stateNew visitState = iota
	stateVisiting
	stateQueued
	stateWritten
)

// ContextOptions can be used to configure a [Context].
type ContextOptions struct {
	// FirstNumber is the first object number allocated.  If this is zero,
	// numbering starts at 1.
	FirstNumber uint32
}

// NewContext returns a new, empty write context.
func NewContext(opt *ContextOptions) *Context {
	if opt == nil {
		opt = &ContextOptions{}
	}
	next := opt.FirstNumber
	if next == 0 {
		next = 1
	}
	return &Context{
		entries: make(map[cos.Object]*entry),
		next:    next,
	}
}

// trackable reports whether obj has an identity which can be used as a map
// key.
func trackable(obj cos.Object) bool {
	switch x := obj.(type) {
	case *cos.Dict:
		return x != nil
	case *cos.Array:
		return x != nil
	case *cos.Stream:
		return x != nil
	case *cos.Indirect:
		return x != nil
	case cos.Reference:
		return true
	}
	return false
}

// AssignOrGet returns the object number of obj.  If obj has not been seen
// before in this session, the next free number is allocated.
func (c *Context) AssignOrGet(obj cos.Object) (cos.Reference, error) {
	if !trackable(obj) {
		return 0, fmt.Errorf("%T: %w", obj, ErrNotTrackable)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.assign(c.get(obj)), nil
}

// key returns the map key used for obj.  Chains of *cos.Indirect around a
// container are replaced by the container.
func key(obj cos.Object) cos.Object {
	var seen []*cos.Indirect
	for {
		x, ok := obj.(*cos.Indirect)
		if !ok || x == nil || slices.Contains(seen, x) {
			return obj
		}
		switch inner := x.Obj.(type) {
		case *cos.Dict, *cos.Array, *cos.Stream, *cos.Indirect:
			if !trackable(inner) {
				return obj
			}
			seen = append(seen, x)
			obj = inner
		default:
			return obj
		}
	}
}

// get returns the entry for obj, creating it if needed.
// The caller must hold c.mu.
func (c *Context) get(obj cos.Object) *entry {
	k := key(obj)
	e := c.entries[k]
	if e == nil {
		e = &entry{obj: k}
		c.entries[k] = e
	}
	return e
}

// assign allocates an object number for e, if needed.
// The caller must hold c.mu.
func (c *Context) assign(e *entry) cos.Reference {
	if e.ref == 0 {
		e.ref = cos.NewReference(c.next, 0)
		c.next++
	}
	return e.ref
}

// HasReference reports whether an object number has been assigned to obj.
func (c *Context) HasReference(obj cos.Object) bool {
	_, ok := c.Lookup(obj)
	return ok
}

// Lookup returns the object number assigned to obj, if any.
func (c *Context) Lookup(obj cos.Object) (cos.Reference, bool) {
	if !trackable(obj) {
		return 0, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[key(obj)]
	if e == nil || e.ref == 0 {
		return 0, false
	}
	return e.ref, true
}

// MarkWritten records that obj has been written to the output.
func (c *Context) MarkWritten(obj cos.Object) {
	if !trackable(obj) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.get(obj).state = stateWritten
}

// IsWritten reports whether obj has been written to the output.
func (c *Context) IsWritten(obj cos.Object) bool {
	if !trackable(obj) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[key(obj)]
	return e != nil && e.state == stateWritten
}

// BeginVisit marks obj as being visited by a graph traversal.  The return
// value is false if obj is already being visited, has been visited before
// and is waiting to be written, or has been written.  In this case, the
// traversal must not descend into obj again.
func (c *Context) BeginVisit(obj cos.Object) bool {
	if !trackable(obj) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.get(obj)
	if e.state != stateNew {
		return false
	}
	e.state = stateVisiting
	return true
}

// EndVisit marks the end of the traversal of obj.  If obj has an object
// number, it stays marked as visited until it is written.  Otherwise the
// marker is removed, so that the object can be visited again, for example
// when a direct array is shared between two containers.
func (c *Context) EndVisit(obj cos.Object) {
	if !trackable(obj) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(obj)
	e := c.entries[k]
	if e == nil || e.state != stateVisiting {
		return
	}
	if e.ref != 0 {
		e.state = stateQueued
	} else {
		delete(c.entries, k)
	}
}

// Size returns one more than the largest object number allocated so far.
// This is the value of /Size in the trailer dictionary.
func (c *Context) Size() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.next
}

// link records that the reference ref in the input resolves to target.
// If target has an identity, both share one object number.  Otherwise target
// is written as the body of a new object for ref.
func (c *Context) link(ref cos.Reference, target cos.Object) cos.Reference {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e := c.entries[ref]; e != nil && e.ref != 0 {
		return e.ref
	}

	var e *entry
	if trackable(target) {
		e = c.get(target)
	} else {
		e = &entry{obj: target}
	}
	c.entries[ref] = e
	return c.assign(e)
}

// object returns the object which is written for obj.  For references
// which were resolved using link, this is the target of the reference.
func (c *Context) object(obj cos.Object) cos.Object {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e := c.entries[key(obj)]; e != nil {
		return e.obj
	}
	return obj
}
