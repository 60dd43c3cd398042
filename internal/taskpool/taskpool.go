// Copyright 2025 The Dxtc Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package taskpool runs queued tasks on a fixed set of goroutines.
package taskpool

import (
	"sync"
)

// Pool runs tasks. Join blocks until every task queued so far has finished.
type Pool interface {
	Queue(task func())
	Join()
}

// Direct is a Pool that runs each task synchronously, inside Queue.
type Direct struct{}

func (Direct) Queue(task func()) { task() }
func (Direct) Join()             {}

// WorkerPool is a Pool backed by a fixed number of goroutines reading from a
// bounded queue. Queue blocks while the queue is full.
type WorkerPool struct {
	q       chan func()
	pending sync.WaitGroup
	workers sync.WaitGroup
	close   sync.Once
}

// New starts a WorkerPool with the given number of goroutines, at least one.
func New(workers int) *WorkerPool {
	workers = max(workers, 1)
	p := &WorkerPool{
		q: make(chan func(), 4*workers),
	}
	p.workers.Add(workers)
	for range workers {
		go p.run()
	}
	return p
}

func (p *WorkerPool) run() {
	defer p.workers.Done()
	for task := range p.q {
		task()
		p.pending.Done()
	}
}

// Queue adds a task. It must not be called after Close.
func (p *WorkerPool) Queue(task func()) {
	p.pending.Add(1)
	p.q <- task
}

// Join waits for every queued task to finish. The pool stays usable.
func (p *WorkerPool) Join() {
	p.pending.Wait()
}

// Close waits for every queued task to finish and then stops the goroutines.
// It is safe to call more than once.
func (p *WorkerPool) Close() {
	p.close.Do(func() {
		close(p.q)
		p.workers.Wait()
	})
}
