package mqtt

import (
	"sync"
	"time"
)

// Linker reports whether the broker link is up.
type Linker interface {
	IsConnected() bool
}

// Monitor polls a broker link and reports state changes.
type Monitor struct {
	mu        sync.RWMutex
	link      Linker
	connected bool
	checked   bool
	onChange  func(connected bool)
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewMonitor creates a monitor. onChange runs on the first check and on every flip.
func NewMonitor(link Linker, onChange func(connected bool)) *Monitor {
	return &Monitor{
		link:     link,
		onChange: onChange,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background check loop.
func (m *Monitor) Start(checkInterval time.Duration) {
	m.Check()
	m.wg.Add(1)
	go m.loop(checkInterval)
}

// Stop stops the background check loop.
func (m *Monitor) Stop() {
	close(m.stopCh)
	m.wg.Wait()
}

func (m *Monitor) loop(interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.Check()
		}
	}
}

// Check samples the link once.
func (m *Monitor) Check() {
	now := m.link.IsConnected()

	m.mu.Lock()
	changed := !m.checked || now != m.connected
	m.connected = now
	m.checked = true
	m.mu.Unlock()

	if changed && m.onChange != nil {
		m.onChange(now)
	}
}

// Connected returns the last sampled state.
func (m *Monitor) Connected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}
