package autosave

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/marcus/twonote/internal/notebook"
	"github.com/marcus/twonote/internal/store"
)

// recorder is a SaveFunc that records written content and can be gated.
type recorder struct {
	mu      sync.Mutex
	saved   map[string][]string
	started chan string
	release chan struct{}
	fail    bool
}

func newRecorder(gated bool) *recorder {
	r := &recorder{saved: make(map[string][]string)}
	if gated {
		r.started = make(chan string, 16)
		r.release = make(chan struct{})
	}
	return r
}

func (r *recorder) save(_ context.Context, id string, upd store.NoteUpdate) (*notebook.Note, error) {
	if r.started != nil {
		r.started <- id
		<-r.release
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, errors.New("disk full")
	}
	content := ""
	if upd.Content != nil {
		content = *upd.Content
	}
	r.saved[id] = append(r.saved[id], content)
	return &notebook.Note{ID: id, Content: content}, nil
}

func (r *recorder) history(id string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.saved[id]...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func content(s string) store.NoteUpdate {
	return store.NoteUpdate{Content: &s}
}

func waitResult(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for save result")
		return Result{}
	}
}

func TestQueue_SavesInOrder(t *testing.T) {
	rec := newRecorder(false)
	q := New(rec.save, quietLogger())

	for _, c := range []string{"a", "ab", "abc"} {
		r := q.Save(context.Background(), "nt-1", content(c))
		if r.Err != nil {
			t.Fatalf("Save: %v", r.Err)
		}
		if r.Note.Content != c {
			t.Errorf("saved note content = %q, want %q", r.Note.Content, c)
		}
	}

	got := rec.history("nt-1")
	if len(got) != 3 || got[2] != "abc" {
		t.Errorf("history = %v", got)
	}
	if q.Dirty("nt-1") {
		t.Error("note should be clean after saves complete")
	}
}

func TestQueue_DropsStaleSnapshots(t *testing.T) {
	rec := newRecorder(true)
	q := New(rec.save, quietLogger())

	gen1, done1 := q.Submit("nt-1", content("one"))
	<-rec.started // first save is in flight

	gen2, done2 := q.Submit("nt-1", content("two"))
	gen3, done3 := q.Submit("nt-1", content("three"))
	if gen1 != 1 || gen2 != 2 || gen3 != 3 {
		t.Fatalf("generations = %d %d %d", gen1, gen2, gen3)
	}
	if !q.Dirty("nt-1") {
		t.Error("note should be dirty while saves are queued")
	}

	close(rec.release)

	r1 := waitResult(t, done1)
	if r1.Generation != 1 || r1.Superseded(gen1) {
		t.Errorf("first result = %+v", r1)
	}
	r2 := waitResult(t, done2)
	if r2.Generation != 3 || !r2.Superseded(gen2) {
		t.Errorf("second result should report the newer write, got %+v", r2)
	}
	r3 := waitResult(t, done3)
	if r3.Generation != 3 || r3.Note.Content != "three" {
		t.Errorf("third result = %+v", r3)
	}

	got := rec.history("nt-1")
	if len(got) != 2 || got[0] != "one" || got[1] != "three" {
		t.Errorf("history = %v, want [one three]", got)
	}
}

func TestQueue_MergesPartialUpdates(t *testing.T) {
	rec := newRecorder(true)
	var mu sync.Mutex
	var last store.NoteUpdate
	save := func(ctx context.Context, id string, upd store.NoteUpdate) (*notebook.Note, error) {
		mu.Lock()
		last = upd
		mu.Unlock()
		return rec.save(ctx, id, upd)
	}
	q := New(save, quietLogger())

	q.Submit("nt-1", content("first"))
	<-rec.started

	cols := 2
	q.Submit("nt-1", store.NoteUpdate{Columns: &cols})
	_, done := q.Submit("nt-1", content("second"))
	close(rec.release)
	waitResult(t, done)

	mu.Lock()
	defer mu.Unlock()
	if last.Columns == nil || *last.Columns != 2 || last.Content == nil || *last.Content != "second" {
		t.Errorf("merged update = %+v", last)
	}
}

func TestQueue_Flush(t *testing.T) {
	rec := newRecorder(true)
	q := New(rec.save, quietLogger())

	if err := q.Flush(context.Background()); err != nil {
		t.Fatalf("Flush on idle queue: %v", err)
	}

	q.Submit("nt-1", content("x"))
	q.Submit("nt-2", content("y"))
	<-rec.started
	<-rec.started // both notes save concurrently

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := q.Flush(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Flush with blocked saves = %v, want deadline exceeded", err)
	}

	close(rec.release)
	if err := q.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(rec.history("nt-1")) != 1 || len(rec.history("nt-2")) != 1 {
		t.Error("both notes should be saved after flush")
	}
}

func TestQueue_FailedSaveStaysDirty(t *testing.T) {
	rec := newRecorder(false)
	rec.fail = true
	q := New(rec.save, quietLogger())

	r := q.Save(context.Background(), "nt-1", content("x"))
	if r.Err == nil {
		t.Fatal("expected error")
	}
	if !q.Dirty("nt-1") {
		t.Error("failed save should leave the note dirty")
	}
}
