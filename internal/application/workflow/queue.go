package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pumpkinbots/partbot/pkg/metrics"
)

// ErrQueueClosed la cola ya no acepta tareas.
var ErrQueueClosed = errors.New("workflow: cola cerrada")

// Task unidad de trabajo que se ejecuta en exclusión mutua con las demás.
type Task func(ctx context.Context) error

type job struct {
	ctx   context.Context
	task  Task
	reply chan error
}

// Queue cola serializada de un solo escritor: una goroutine ejecuta las tareas en orden
// FIFO y cada una corre hasta terminar antes de tomar la siguiente.
type Queue struct {
	jobs chan job
	quit chan struct{}
	done chan struct{}
	once sync.Once
	log  zerolog.Logger
}

// NewQueue lanza la goroutine de trabajo. buffer es la cantidad de tareas que pueden esperar.
func NewQueue(buffer int, log zerolog.Logger) *Queue {
	q := &Queue{
		jobs: make(chan job, buffer),
		quit: make(chan struct{}),
		done: make(chan struct{}),
		log:  log,
	}
	go q.loop()
	return q
}

func (q *Queue) loop() {
	defer close(q.done)
	for {
		select {
		case j := <-q.jobs:
			metrics.QueueDepth.Dec()
			j.reply <- q.run(j)
		case <-q.quit:
			return
		}
	}
}

func (q *Queue) run(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error().Interface("panic", r).Msg("workflow task panicked")
			err = fmt.Errorf("workflow: tarea abortada: %v", r)
		}
	}()
	return j.task(j.ctx)
}

// Do encola la tarea y espera su resultado. La tarea corre con un contexto que no se
// cancela cuando el llamador se va: una transición en curso nunca se interrumpe.
func (q *Queue) Do(ctx context.Context, task Task) error {
	j := job{ctx: context.WithoutCancel(ctx), task: task, reply: make(chan error, 1)}

	select {
	case <-q.quit:
		return ErrQueueClosed
	default:
	}

	metrics.QueueDepth.Inc()
	select {
	case q.jobs <- j:
	case <-q.quit:
		metrics.QueueDepth.Dec()
		return ErrQueueClosed
	case <-ctx.Done():
		metrics.QueueDepth.Dec()
		return ctx.Err()
	}

	select {
	case err := <-j.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close detiene la goroutine después de la tarea en curso.
func (q *Queue) Close() {
	q.once.Do(func() { close(q.quit) })
	<-q.done
}
