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
	"fmt"

	"seehuhn.de/go/cos"
)

// Options can be used to configure a [BodyWriter] or an [AsyncWriter].
type Options struct {
	// QueueSize is the number of objects an AsyncWriter can hold before
	// Write blocks.  If this is zero, a default of 64 is used.
	QueueSize int

	// Resolve, if set, is used to look up the objects referred to by
	// [cos.Reference] values in the graph.  The referenced objects are then
	// written as part of the graph, under new object numbers.  If Resolve
	// is nil, references are written unchanged.
	Resolve func(cos.Reference) (cos.Object, error)
}

const defaultQueueSize = 64

// A BodyWriter writes graphs of objects using an [ObjectWriter].
type BodyWriter struct {
	ow      *ObjectWriter
	resolve func(cos.Reference) (cos.Object, error)
}

// NewBodyWriter returns a new BodyWriter which writes to ow.
func NewBodyWriter(ow *ObjectWriter, opt *Options) *BodyWriter {
	if opt == nil {
		opt = &Options{}
	}
	return &BodyWriter{
		ow:      ow,
		resolve: opt.Resolve,
	}
}

// Write writes every root, together with all objects reachable from it.
//
// Every root is written as an indirect object.  Dictionaries, streams and
// [cos.Indirect] values reachable from a root are written as separate
// indirect objects and are replaced by references.  Arrays are written
// inline, unless an array contains itself.  Objects which have been written
// before in the same session are not written again.
func (w *BodyWriter) Write(roots ...cos.Object) error {
	if err := checkRoots(roots, w.resolve); err != nil {
		return err
	}
	objs, err := discover(w.ow.ctx, w.resolve, roots)
	if err != nil {
		return err
	}
	for _, obj := range objs {
		err := w.ow.WriteObjectIfNotWritten(obj)
		if err != nil {
			return err
		}
	}
	return nil
}

// checkRoots verifies that all roots can be written as indirect objects.
func checkRoots(roots []cos.Object, resolve func(cos.Reference) (cos.Object, error)) error {
	for _, root := range roots {
		if !trackable(root) {
			return fmt.Errorf("%T cannot be written as an indirect object", root)
		}
		if ref, isRef := root.(cos.Reference); isRef && resolve == nil {
			return fmt.Errorf("cannot write %s without a resolver", ref)
		}
	}
	return nil
}

// discover traverses the object graph starting at roots.  All objects
// which need to be written as indirect objects are assigned object numbers
// and are returned in depth-first pre-order.
func discover(ctx *Context, resolve func(cos.Reference) (cos.Object, error), roots []cos.Object) ([]cos.Object, error) {
	d := &discoverer{
		ctx:     ctx,
		resolve: resolve,
	}
	for _, root := range roots {
		var err error
		if ref, isRef := root.(cos.Reference); isRef {
			err = d.reference(ref)
		} else {
			err = d.indirect(root)
		}
		if err != nil {
			return nil, err
		}
	}
	return d.queue, nil
}

type discoverer struct {
	ctx     *Context
	resolve func(cos.Reference) (cos.Object, error)
	queue   []cos.Object
}

// indirect visits an object which is written as an indirect object.
func (d *discoverer) indirect(obj cos.Object) error {
	if !d.ctx.BeginVisit(obj) {
		return nil
	}
	defer d.ctx.EndVisit(obj)

	if _, err := d.ctx.AssignOrGet(obj); err != nil {
		return err
	}
	d.queue = append(d.queue, obj)

	return d.children(d.ctx.object(obj))
}

// array visits a direct array.
func (d *discoverer) array(a *cos.Array) error {
	if d.ctx.HasReference(a) {
		return d.indirect(a)
	}
	if !d.ctx.BeginVisit(a) {
		// The array contains itself and must be written as an indirect
		// object to break the cycle.
		if _, err := d.ctx.AssignOrGet(a); err != nil {
			return err
		}
		d.queue = append(d.queue, a)
		return nil
	}
	defer d.ctx.EndVisit(a)

	return d.children(a)
}

// reference visits the object a reference points to.
func (d *discoverer) reference(ref cos.Reference) error {
	if d.ctx.HasReference(ref) {
		return nil
	}

	target, err := d.resolve(ref)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", ref, err)
	}
	if _, isRef := target.(cos.Reference); isRef {
		return fmt.Errorf("%s resolves to a reference", ref)
	}
	d.ctx.link(ref, target)
	if trackable(target) {
		return d.indirect(target)
	}
	return d.indirect(ref)
}

// children visits the values contained in obj.
func (d *discoverer) children(obj cos.Object) error {
	switch x := obj.(type) {
	case *cos.Dict:
		for _, val := range x.All() {
			if err := d.value(val); err != nil {
				return err
			}
		}
	case *cos.Array:
		for _, val := range x.All() {
			if err := d.value(val); err != nil {
				return err
			}
		}
	case *cos.Stream:
		for key, val := range x.Dict.All() {
			if key == "Length" {
				// recomputed when the stream is written
				continue
			}
			if err := d.value(val); err != nil {
				return err
			}
		}
	case *cos.Indirect:
		if x == nil {
			return nil
		}
		return d.children(x.Obj)
	}
	return nil
}

// value visits a value contained in a container.
func (d *discoverer) value(val cos.Object) error {
	switch x := val.(type) {
	case *cos.Dict, *cos.Stream, *cos.Indirect:
		if !trackable(x) {
			return nil
		}
		return d.indirect(x)
	case *cos.Array:
		if x == nil {
			return nil
		}
		return d.array(x)
	case cos.Reference:
		if d.resolve == nil {
			return nil
		}
		return d.reference(x)
	}
	return nil
}
