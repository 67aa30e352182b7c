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
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"seehuhn.de/go/cos"
)

// An AsyncWriter writes graphs of objects using a background goroutine.
//
// The object graph is traversed and object numbers are assigned by the
// goroutine which calls Write.  The objects are then passed to a single
// background goroutine, which writes them using an [ObjectWriter].  Objects
// are written in the order in which the Write calls were made, and within
// one call in depth-first pre-order.
//
// The methods of an AsyncWriter can be called concurrently.  Once an error
// occurs, the writer stops and the error is returned by all subsequent
// calls.
type AsyncWriter struct {
	ow      *ObjectWriter
	resolve func(cos.Reference) (cos.Object, error)

	// fg serializes Write, Flush and Close.  The closed flag is checked
	// before fg is taken, so that callers do not wait for Close to drain
	// the queue.
	fg sync.Mutex

	jobs  chan job
	done  chan struct{} // closed when the background goroutine exits
	group errgroup.Group

	mu     sync.Mutex
	closed bool
	err    error
}

// A job is either an object to write, or a barrier which is closed once
// all preceding objects are written.
type job struct {
	obj     cos.Object
	barrier chan struct{}
}

// NewAsyncWriter returns a new AsyncWriter which writes to ow, and starts
// the background goroutine.  Close must be called to stop the goroutine.
func NewAsyncWriter(ow *ObjectWriter, opt *Options) *AsyncWriter {
	if opt == nil {
		opt = &Options{}
	}
	queueSize := opt.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	w := &AsyncWriter{
		ow:      ow,
		resolve: opt.Resolve,
		jobs:    make(chan job, queueSize),
		done:    make(chan struct{}),
	}
	w.group.Go(w.run)
	return w
}

func (w *AsyncWriter) run() error {
	defer close(w.done)

	for j := range w.jobs {
		if j.barrier != nil {
			close(j.barrier)
			continue
		}
		err := w.ow.WriteObjectIfNotWritten(j.obj)
		if err != nil {
			w.setErr(err)
			return err
		}
	}
	return nil
}

func (w *AsyncWriter) setErr(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err == nil {
		w.err = err
	}
}

// check returns an error if no more work can be accepted.
func (w *AsyncWriter) check() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil {
		return w.err
	}
	if w.closed {
		return cos.ErrClosed
	}
	return nil
}

// Write traverses the object graphs starting at roots and queues all
// objects which need to be written.  See [BodyWriter.Write] for the
// rules which objects are written as indirect objects.
//
// Write blocks if the queue is full.  If ctx is cancelled while Write is
// blocked, the writer stops and ctx.Err() is returned.  If the writer has
// been closed, or Close has been called concurrently, [cos.ErrClosed] is
// returned without waiting.  If an error occurred in the
// background goroutine, this error is returned.
func (w *AsyncWriter) Write(ctx context.Context, roots ...cos.Object) error {
	if err := w.check(); err != nil {
		return err
	}

	w.fg.Lock()
	defer w.fg.Unlock()

	if err := w.check(); err != nil {
		return err
	}
	if err := checkRoots(roots, w.resolve); err != nil {
		return err
	}

	objs, err := discover(w.ow.ctx, w.resolve, roots)
	if err != nil {
		// Objects discovered before the error have been marked as visited
		// and will not be discovered again.
		w.setErr(err)
		return err
	}

	for _, obj := range objs {
		err := w.send(ctx, job{obj: obj})
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *AsyncWriter) send(ctx context.Context, j job) error {
	select {
	case w.jobs <- j:
		return nil
	case <-w.done:
		return w.check()
	case <-ctx.Done():
		err := ctx.Err()
		w.setErr(err)
		return err
	}
}

// Flush waits until all queued objects have been written, and then flushes
// the underlying ObjectWriter.
func (w *AsyncWriter) Flush(ctx context.Context) error {
	if err := w.check(); err != nil {
		return err
	}

	w.fg.Lock()
	defer w.fg.Unlock()

	if err := w.check(); err != nil {
		return err
	}

	barrier := make(chan struct{})
	err := w.send(ctx, job{barrier: barrier})
	if err != nil {
		return err
	}

	select {
	case <-barrier:
	case <-w.done:
		return w.check()
	case <-ctx.Done():
		err := ctx.Err()
		w.setErr(err)
		return err
	}

	err = w.ow.Flush()
	if err != nil {
		w.setErr(err)
	}
	return err
}

// Close stops accepting new objects, waits until all queued objects have
// been written, and closes the underlying ObjectWriter.  The first error
// which occurred while writing is returned.  Calling Close a second time
// has no effect and returns nil.
func (w *AsyncWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	w.fg.Lock()
	defer w.fg.Unlock()

	close(w.jobs)
	err := w.group.Wait()

	closeErr := w.ow.Close()
	if err == nil {
		w.mu.Lock()
		err = w.err
		w.mu.Unlock()
	}
	if err == nil {
		err = closeErr
	}
	return err
}
