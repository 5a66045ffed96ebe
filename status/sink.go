package status

import (
	"bufio"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

const (
	flushInterval = 20 * time.Millisecond
	enqueueWait   = 10 * time.Millisecond
)

// Sink is an io.Writer for loggers. Writes are queued and a single
// goroutine drains them into the output and the hub, so a slow disk never
// blocks the caller for more than a few milliseconds. Lines that do not
// fit in time are dropped and counted.
type Sink struct {
	out io.WriteCloser
	hub *Hub

	queue chan []byte
	done  chan struct{}

	lock    sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

func NewSink(out io.WriteCloser, hub *Hub, size int) *Sink {
	if size <= 0 {
		size = 256
	}
	s := &Sink{
		out:   out,
		hub:   hub,
		queue: make(chan []byte, size),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Sink) Write(p []byte) (int, error) {
	line := append([]byte(nil), p...)

	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.closed {
		s.dropped.Add(1)
		return len(p), nil
	}

	select {
	case s.queue <- line:
		return len(p), nil
	default:
	}

	timer := time.NewTimer(enqueueWait)
	defer timer.Stop()
	select {
	case s.queue <- line:
	case <-timer.C:
		s.dropped.Add(1)
	}
	return len(p), nil
}

func (s *Sink) run() {
	defer close(s.done)

	w := bufio.NewWriter(s.out)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case line, ok := <-s.queue:
			if !ok {
				w.Flush()
				return
			}
			w.Write(line)
			if s.hub != nil {
				s.hub.Broadcast(string(line))
			}
		case <-ticker.C:
			w.Flush()
		}
	}
}

func (s *Sink) Dropped() uint64 { return s.dropped.Load() }

// Close writes out everything still queued and closes the output.
func (s *Sink) Close() error {
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.lock.Unlock()

	<-s.done
	return s.out.Close()
}
