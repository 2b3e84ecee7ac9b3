package speed

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	serial "github.com/jacobsa/go-serial/serial"
)

// staleAfter is how old the last serial speed line may be before Read
// refuses to report it.
const staleAfter = 2 * time.Second

// Serial reads the same JSON speed lines the KickMeter sends over BLE from a
// serial port instead, for bench rigs where the peripheral is wired up
// directly. A background goroutine consumes lines as they arrive; Read
// returns the most recent value.
type Serial struct {
	port io.ReadWriteCloser

	mu     sync.RWMutex
	last   float64
	lastAt time.Time
	closed bool
}

func NewSerial(portName string, baudRate uint) (*Serial, error) {
	opts := serial.OpenOptions{
		PortName:        portName,
		BaudRate:        baudRate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", portName, err)
	}
	log.Printf("serial: speed source on %s at %d baud", portName, baudRate)

	s := &Serial{port: port}
	go s.readLoop()
	return s, nil
}

func (s *Serial) readLoop() {
	reader := bufio.NewReader(s.port)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			s.mu.Lock()
			s.closed = true
			s.mu.Unlock()
			log.Printf("serial: read loop ended: %v", err)
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := Decode([]byte(line))
		if err != nil {
			// noisy line or partial write; skip it
			continue
		}
		s.mu.Lock()
		s.last = v
		s.lastAt = time.Now()
		s.mu.Unlock()
	}
}

// Read returns the most recent speed line if it is fresh enough.
func (s *Serial) Read(ctx context.Context) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastAt.IsZero() || time.Since(s.lastAt) > staleAfter {
		return 0, fmt.Errorf("serial: no recent speed line")
	}
	return s.last, nil
}

func (s *Serial) Alive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.closed
}

func (s *Serial) Close() error {
	return s.port.Close()
}
