package telemetry

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// Serial link defaults
const (
	DefaultBaudRate    = 9600
	DefaultReadTimeout = 100 * time.Millisecond
	maxLineLen         = 4096
)

// Source is anything the frame loop can pull records from.
type Source interface {
	// ReadLine blocks for at most the read timeout. It returns ErrNoData
	// when no complete line arrived, and errors wrapping ErrMalformed or
	// ErrLinkDown on failure.
	ReadLine() (Record, error)
	// Reconnect tries to reopen the link. Failures are logged and ignored.
	Reconnect()
	Close() error
}

// LineSource is a Source that can also hand out raw wire lines
type LineSource interface {
	Source
	ReadRaw() (string, error)
}

// Port is the part of a serial port the adapter uses
type Port interface {
	io.ReadCloser
	SetReadTimeout(t time.Duration) error
}

// Opener opens a named serial port
type Opener func(name string, mode *serial.Mode) (Port, error)

// OpenSerialPort opens a real serial port
func OpenSerialPort(name string, mode *serial.Mode) (Port, error) {
	return serial.Open(name, mode)
}

// SerialConfig describes the link to the robot
type SerialConfig struct {
	Port        string
	BaudRate    int
	ReadTimeout time.Duration
}

func (c SerialConfig) withDefaults() SerialConfig {
	if c.BaudRate <= 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	return c
}

// Mode returns the serial mode for the link (8N1)
func (c SerialConfig) Mode() *serial.Mode {
	c = c.withDefaults()
	return &serial.Mode{
		BaudRate: c.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// Serial reads telemetry lines from a serial port. It owns the port handle;
// Reconnect replaces it and drops any partially read line.
type Serial struct {
	cfg    SerialConfig
	open   Opener
	parser *Parser

	port  Port
	buf   []byte
	chunk []byte
}

// NewSerial creates the adapter and opens the port
func NewSerial(cfg SerialConfig, parser *Parser, open Opener) (*Serial, error) {
	if open == nil {
		open = OpenSerialPort
	}
	if parser == nil {
		parser = NewParser()
	}
	s := &Serial{
		cfg:    cfg.withDefaults(),
		open:   open,
		parser: parser,
		chunk:  make([]byte, 256),
	}
	port, err := s.openPort()
	if err != nil {
		return nil, err
	}
	s.port = port
	Logf("Serial link open on %s @ %d baud", s.cfg.Port, s.cfg.BaudRate)
	return s, nil
}

// PortName returns the name of the port the adapter reopens
func (s *Serial) PortName() string {
	return s.cfg.Port
}

func (s *Serial) openPort() (Port, error) {
	port, err := s.open(s.cfg.Port, s.cfg.Mode())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.cfg.Port, err)
	}
	if err := port.SetReadTimeout(s.cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", s.cfg.Port, err)
	}
	return port, nil
}

// ReadRaw returns the next complete line without its terminator.
func (s *Serial) ReadRaw() (string, error) {
	if s.port == nil {
		return "", fmt.Errorf("%w: %s is not open", ErrLinkDown, s.cfg.Port)
	}

	deadline := time.Now().Add(s.cfg.ReadTimeout)
	for {
		if i := bytes.IndexByte(s.buf, '\n'); i >= 0 {
			line := string(bytes.TrimRight(s.buf[:i], "\r"))
			s.buf = s.buf[i+1:]
			return line, nil
		}
		if len(s.buf) > maxLineLen {
			s.buf = s.buf[:0]
			return "", fmt.Errorf("%w: line longer than %d bytes", ErrMalformed, maxLineLen)
		}
		if !time.Now().Before(deadline) {
			return "", ErrNoData
		}

		n, err := s.port.Read(s.chunk)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrLinkDown, err)
		}
		if n == 0 {
			// read timeout
			return "", ErrNoData
		}
		s.buf = append(s.buf, s.chunk[:n]...)
	}
}

// ReadLine reads and parses the next line
func (s *Serial) ReadLine() (Record, error) {
	line, err := s.ReadRaw()
	if err != nil {
		return nil, err
	}
	return s.parser.Parse(line)
}

// Reconnect closes the current handle and reopens the same port.
func (s *Serial) Reconnect() {
	if s.port != nil {
		s.port.Close()
		s.port = nil
	}
	s.buf = s.buf[:0]

	port, err := s.openPort()
	if err != nil {
		Logf("Reconnect failed: %v", err)
		return
	}
	s.port = port
	Logf("Reconnected to %s", s.cfg.Port)
}

// Close releases the port
func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}
