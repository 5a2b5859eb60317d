package worker

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// Job is a unit of background work.
type Job interface {
	ID() string
	Execute() error
}

// ErrQueueFull is returned by Submit when the job queue has no room.
var ErrQueueFull = errors.New("job queue full")

// Worker pulls jobs from its own channel, registering that channel with
// the shared pool whenever it is idle.
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

func (w Worker) start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			w.workerPool <- w.jobChannel

			select {
			case job := <-w.jobChannel:
				w.log.WithFields(logrus.Fields{"worker": w.id, "job_id": job.ID()}).Info("Job started")
				if err := job.Execute(); err != nil {
					w.log.WithFields(logrus.Fields{"worker": w.id, "job_id": job.ID(), "error": err.Error()}).Error("Job failed")
				} else {
					w.log.WithFields(logrus.Fields{"worker": w.id, "job_id": job.ID()}).Info("Job finished")
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

// Dispatcher fans incoming jobs out to a fixed pool of workers.
type Dispatcher struct {
	maxWorkers int
	workerPool chan chan Job
	jobQueue   chan Job
	workers    []Worker
	wg         sync.WaitGroup
	quit       chan bool
	log        *logrus.Logger
}

func NewDispatcher(maxWorkers, queueSize int, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		maxWorkers: maxWorkers,
		workerPool: make(chan chan Job, maxWorkers),
		jobQueue:   make(chan Job, queueSize),
		workers:    make([]Worker, 0, maxWorkers),
		quit:       make(chan bool),
		log:        log,
	}
}

// Run starts the workers and the dispatch loop.
func (d *Dispatcher) Run() {
	for i := 1; i <= d.maxWorkers; i++ {
		w := newWorker(i, d.workerPool, &d.wg, d.log)
		d.workers = append(d.workers, w)
		w.start()
	}
	go d.dispatch()
	d.log.WithField("workers", d.maxWorkers).Info("Dispatcher running")
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

// Submit enqueues a job without blocking.
func (d *Dispatcher) Submit(job Job) error {
	select {
	case d.jobQueue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop shuts the dispatch loop down and waits for in-flight jobs.
func (d *Dispatcher) Stop() {
	d.quit <- true
	for _, w := range d.workers {
		w.stop()
	}
	d.wg.Wait()
	d.log.Info("Dispatcher stopped")
}
