// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// defaultPollInterval is reported to clients as the recommended interval
// between tasks/get polls.
const defaultPollInterval = 1000 // milliseconds

// taskEntry is the server-side bookkeeping for one asynchronous tool
// invocation: its current snapshot, a single-shot completion handle for
// tasks/result, and the normalized CallToolResult once settled.
type taskEntry struct {
	mu       sync.Mutex
	task     Task
	done     chan struct{}
	doneOnce sync.Once
	result   *CallToolResult
}

func (e *taskEntry) snapshot() Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.task
}

func (e *taskEntry) settle(status TaskStatus, statusMessage string, result *CallToolResult) {
	e.doneOnce.Do(func() {
		e.mu.Lock()
		e.task.Status = status
		e.task.StatusMessage = statusMessage
		e.task.LastUpdatedAt = nowRFC3339()
		e.result = result
		e.mu.Unlock()
		close(e.done)
	})
}

// taskRegistry is the server's mapping from taskId to taskEntry, guarded by
// its own mutex (one of the four session mutexes). TTL is treated as an
// eviction hint: a background sweep run lazily on first use removes
// terminal entries whose TTL has elapsed.
type taskRegistry struct {
	mu      sync.Mutex
	entries map[string]*taskEntry
	order   []string

	sweepOnce sync.Once
	stop      chan struct{}
}

func newTaskRegistry() *taskRegistry {
	return &taskRegistry{entries: make(map[string]*taskEntry), stop: make(chan struct{})}
}

func nowRFC3339() string { return time.Now().UTC().Format(time.RFC3339Nano) }

// create allocates a new task id and entry in the working state.
func (r *taskRegistry) create(ttl int64) *taskEntry {
	now := nowRFC3339()
	e := &taskEntry{
		task: Task{
			TaskID:        "task-" + strings.ReplaceAll(uuid.New().String(), "-", ""),
			Status:        TaskWorking,
			CreatedAt:     now,
			LastUpdatedAt: now,
			TTL:           ttl,
			PollInterval:  defaultPollInterval,
		},
		done: make(chan struct{}),
	}
	r.mu.Lock()
	r.entries[e.task.TaskID] = e
	r.order = append(r.order, e.task.TaskID)
	r.mu.Unlock()
	if ttl > 0 {
		r.startSweeper()
	}
	return e
}

func (r *taskRegistry) get(id string) (*taskEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	return e, ok
}

func (r *taskRegistry) all() []Task {
	r.mu.Lock()
	ids := append([]string(nil), r.order...)
	r.mu.Unlock()
	out := make([]Task, 0, len(ids))
	for _, id := range ids {
		if e, ok := r.get(id); ok {
			out = append(out, e.snapshot())
		}
	}
	return out
}

func (r *taskRegistry) evict(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
	for i, k := range r.order {
		if k == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// startSweeper starts (once) a background goroutine that evicts terminal
// task entries once their TTL has elapsed.
func (r *taskRegistry) startSweeper() {
	r.sweepOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-r.stop:
					return
				case <-ticker.C:
					r.sweep()
				}
			}
		}()
	})
}

func (r *taskRegistry) sweep() {
	now := time.Now()
	r.mu.Lock()
	var expired []string
	for id, e := range r.entries {
		e.mu.Lock()
		terminal := e.task.Status.IsTerminal()
		ttl := e.task.TTL
		updated, err := time.Parse(time.RFC3339Nano, e.task.LastUpdatedAt)
		e.mu.Unlock()
		if terminal && ttl > 0 && err == nil && now.Sub(updated) > time.Duration(ttl)*time.Millisecond {
			expired = append(expired, id)
		}
	}
	r.mu.Unlock()
	for _, id := range expired {
		r.evict(id)
	}
}

func (r *taskRegistry) close() {
	close(r.stop)
}

// runTask launches fn concurrently, settling e on completion and invoking
// notify with the fresh snapshot.
func runTask(ctx context.Context, e *taskEntry, fn func(context.Context) (*CallToolResult, error), notify func(Task)) {
	go func() {
		result, err := fn(ctx)
		if err != nil {
			e.settle(TaskFailed, sanitizeHandlerError(err), nil)
		} else {
			e.settle(TaskCompleted, "", result)
		}
		notify(e.snapshot())
	}()
}
