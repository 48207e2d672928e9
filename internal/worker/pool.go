// Package worker runs background jobs for the gateway, chiefly thumbnail
// warm-ups issued after each script load so card images are resident in the
// cache before the client asks for them.
package worker

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Job is a unit of background work.
type Job interface {
	Execute() error
	ID() string
}

// Worker pulls jobs from the dispatcher and runs them in its own goroutine.
type Worker struct {
	id         int
	workerPool chan chan Job
	jobChannel chan Job
	quit       chan bool
	wg         *sync.WaitGroup
	log        *logrus.Logger
}

func newWorker(id int, workerPool chan chan Job, wg *sync.WaitGroup, log *logrus.Logger) Worker {
	return Worker{
		id:         id,
		workerPool: workerPool,
		jobChannel: make(chan Job),
		quit:       make(chan bool),
		wg:         wg,
		log:        log,
	}
}

// start makes the worker listen for jobs on its channel.
func (w Worker) start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			// Re-register this worker's channel with the pool.
			w.workerPool <- w.jobChannel

			select {
			case job := <-w.jobChannel:
				if err := job.Execute(); err != nil {
					w.log.WithFields(logrus.Fields{"worker": w.id, "job": job.ID()}).
						WithError(err).Warn("background job failed")
				}
			case <-w.quit:
				return
			}
		}
	}()
}

func (w Worker) stop() {
	go func() {
		w.quit <- true
	}()
}

// Dispatcher fans jobs out to a fixed set of workers through a buffered queue.
type Dispatcher struct {
	maxWorkers int
	workerPool chan chan Job
	jobQueue   chan Job
	workers    []Worker
	wg         sync.WaitGroup
	quit       chan bool
	log        *logrus.Logger
}

// NewDispatcher creates a dispatcher with maxWorkers workers and a queue of
// jobQueueSize pending jobs.
func NewDispatcher(maxWorkers, jobQueueSize int, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		maxWorkers: maxWorkers,
		workerPool: make(chan chan Job, maxWorkers),
		jobQueue:   make(chan Job, jobQueueSize),
		workers:    make([]Worker, 0, maxWorkers),
		quit:       make(chan bool),
		log:        log,
	}
}

// Run starts the dispatcher and its workers.
func (d *Dispatcher) Run() {
	for i := 1; i <= d.maxWorkers; i++ {
		w := newWorker(i, d.workerPool, &d.wg, d.log)
		d.workers = append(d.workers, w)
		w.start()
	}
	go d.dispatch()
	d.log.WithField("workers", d.maxWorkers).Info("background dispatcher running")
}

func (d *Dispatcher) dispatch() {
	for {
		select {
		case job := <-d.jobQueue:
			go func(job Job) {
				jobChannel := <-d.workerPool
				jobChannel <- job
			}(job)
		case <-d.quit:
			return
		}
	}
}

// Submit queues a job without blocking; a full queue drops the job, which is
// acceptable for warm-ups since the cache resolves on demand anyway.
func (d *Dispatcher) Submit(job Job) {
	select {
	case d.jobQueue <- job:
	default:
		d.log.WithField("job", job.ID()).Warn("job queue full, dropping")
	}
}

// Stop shuts the dispatcher down and waits for in-progress jobs.
func (d *Dispatcher) Stop() {
	d.quit <- true
	for _, w := range d.workers {
		w.stop()
	}
	d.wg.Wait()
	close(d.jobQueue)
	close(d.workerPool)
}
