package engine

import (
	"sync"
	"time"
)

// Loop is the game's time step. While running it ticks at the target frame
// rate on its own goroutine; Step advances it by hand.
type Loop struct {
	targetFPS float64
	lock      sync.Locker // game lock held around every frame
	frameFn   func(time, delta float64)

	mu      sync.Mutex // guards the fields below
	now     float64
	delta   float64
	frames  uint64
	running bool
	stop    chan struct{}
	halt    func() // closes stop once
	done    chan struct{}
	fault   any
}

func newLoop(targetFPS float64, lock sync.Locker, frameFn func(time, delta float64)) *Loop {
	return &Loop{targetFPS: targetFPS, lock: lock, frameFn: frameFn}
}

// Now returns the elapsed time in milliseconds of the last frame.
func (l *Loop) Now() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.now
}

// Delta returns the duration in milliseconds of the last frame.
func (l *Loop) Delta() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.delta
}

// Frames returns the number of frames run so far.
func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// Running reports whether the autonomous ticker is active.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Fault returns the value recovered from a panic on the loop goroutine, or
// nil. A faulted loop has stopped.
func (l *Loop) Fault() any {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fault
}

// advance records a frame at time with the given delta.
func (l *Loop) advance(time, delta float64) {
	l.mu.Lock()
	l.now = time
	l.delta = delta
	l.frames++
	l.mu.Unlock()
}

// start launches the ticker goroutine. Frames are timed from now, continuing
// from the last recorded elapsed time.
func (l *Loop) start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stop != nil {
		return
	}
	l.running = true
	stop := make(chan struct{})
	l.stop = stop
	l.halt = sync.OnceFunc(func() { close(stop) })
	l.done = make(chan struct{})
	go l.run(time.Now(), l.now, l.stop, l.done)
}

func (l *Loop) run(started time.Time, base float64, stop, done chan struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			l.mu.Lock()
			l.fault = r
			l.running = false
			l.mu.Unlock()
		}
	}()

	period := time.Duration(float64(time.Second) / l.targetFPS)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		l.lock.Lock()
		select {
		case <-stop:
			l.lock.Unlock()
			return
		default:
		}
		t := base + float64(time.Since(started))/float64(time.Millisecond)
		delta := t - l.Now()
		l.advance(t, delta)
		func() {
			defer l.lock.Unlock()
			l.frameFn(t, delta)
		}()
	}
}

// Halt asks the ticker goroutine to exit before its next frame and returns
// without waiting. Unlike Stop it may be called from inside a frame.
func (l *Loop) Halt() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.halt != nil {
		l.halt()
		l.running = false
	}
}

// Stop halts the ticker goroutine and waits for it to exit. The caller must
// not hold the game lock.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.stop == nil {
		l.mu.Unlock()
		return
	}
	halt, done := l.halt, l.done
	l.stop, l.halt, l.done = nil, nil, nil
	l.running = false
	l.mu.Unlock()

	halt()
	<-done
}
