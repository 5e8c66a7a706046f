// Package autosave serializes note saves. Each note has at most one save in
// flight; while it runs, newer snapshots replace each other so only the
// latest is written next and an older snapshot never overwrites a newer one.
package autosave

import (
	"context"
	"log/slog"
	"sync"

	"github.com/marcus/twonote/internal/notebook"
	"github.com/marcus/twonote/internal/store"
)

// SaveFunc persists one snapshot of a note.
type SaveFunc func(ctx context.Context, noteID string, upd store.NoteUpdate) (*notebook.Note, error)

// Result reports the outcome of a save. Generation is the generation that
// was actually written, which is newer than the submitted one when a later
// snapshot superseded it.
type Result struct {
	NoteID     string
	Generation uint64
	Note       *notebook.Note
	Err        error
}

// Superseded reports whether the submission with generation gen was replaced
// by a newer snapshot before being written.
func (r Result) Superseded(gen uint64) bool {
	return r.Generation > gen
}

type job struct {
	gen     uint64
	upd     store.NoteUpdate
	waiters []chan Result
}

type noteQueue struct {
	gen     uint64
	saved   uint64
	pending *job
	running bool
}

// Queue runs saves, one worker goroutine per note with outstanding work.
type Queue struct {
	save   SaveFunc
	logger *slog.Logger

	mu     sync.Mutex
	notes  map[string]*noteQueue
	active int
	idle   chan struct{}
}

// New creates a queue that writes through save.
func New(save SaveFunc, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	idle := make(chan struct{})
	close(idle)
	return &Queue{
		save:   save,
		logger: logger,
		notes:  make(map[string]*noteQueue),
		idle:   idle,
	}
}

// Submit queues a snapshot for noteID and returns its generation and a
// channel that receives exactly one Result once the snapshot (or a newer one
// that replaced it) has been written.
func (q *Queue) Submit(noteID string, upd store.NoteUpdate) (uint64, <-chan Result) {
	done := make(chan Result, 1)

	q.mu.Lock()
	defer q.mu.Unlock()

	nq := q.notes[noteID]
	if nq == nil {
		nq = &noteQueue{}
		q.notes[noteID] = nq
	}
	nq.gen++

	if nq.pending != nil {
		nq.pending.gen = nq.gen
		nq.pending.upd = mergeUpdates(nq.pending.upd, upd)
		nq.pending.waiters = append(nq.pending.waiters, done)
	} else {
		nq.pending = &job{gen: nq.gen, upd: upd, waiters: []chan Result{done}}
	}

	if !nq.running {
		nq.running = true
		if q.active == 0 {
			q.idle = make(chan struct{})
		}
		q.active++
		go q.run(noteID, nq)
	}
	return nq.gen, done
}

// Save submits a snapshot and blocks until it is written or ctx ends.
func (q *Queue) Save(ctx context.Context, noteID string, upd store.NoteUpdate) Result {
	_, done := q.Submit(noteID, upd)
	select {
	case r := <-done:
		return r
	case <-ctx.Done():
		return Result{NoteID: noteID, Err: ctx.Err()}
	}
}

func (q *Queue) run(noteID string, nq *noteQueue) {
	for {
		q.mu.Lock()
		j := nq.pending
		if j == nil {
			nq.running = false
			q.active--
			if q.active == 0 {
				close(q.idle)
			}
			q.mu.Unlock()
			return
		}
		nq.pending = nil
		q.mu.Unlock()

		note, err := q.save(context.Background(), noteID, j.upd)
		if err != nil {
			q.logger.Warn("autosave: save failed", "id", noteID, "gen", j.gen, "error", err)
		} else {
			q.logger.Debug("autosave: saved", "id", noteID, "gen", j.gen)
		}

		q.mu.Lock()
		if err == nil && j.gen > nq.saved {
			nq.saved = j.gen
		}
		q.mu.Unlock()

		r := Result{NoteID: noteID, Generation: j.gen, Note: note, Err: err}
		for _, w := range j.waiters {
			w <- r
		}
	}
}

// Dirty reports whether noteID has snapshots that are not yet written.
func (q *Queue) Dirty(noteID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	nq := q.notes[noteID]
	return nq != nil && nq.saved < nq.gen
}

// Flush waits until every queued save has finished or ctx ends.
func (q *Queue) Flush(ctx context.Context) error {
	for {
		q.mu.Lock()
		if q.active == 0 {
			q.mu.Unlock()
			return nil
		}
		idle := q.idle
		q.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// mergeUpdates overlays newer on older so fields set only by the older
// snapshot are still written.
func mergeUpdates(older, newer store.NoteUpdate) store.NoteUpdate {
	out := older
	if newer.Title != nil {
		out.Title = newer.Title
	}
	if newer.Content != nil {
		out.Content = newer.Content
	}
	if newer.Columns != nil {
		out.Columns = newer.Columns
	}
	if newer.Order != nil {
		out.Order = newer.Order
	}
	if newer.Attachments != nil {
		out.Attachments = newer.Attachments
	}
	return out
}
