// Package serial opens a UART as a link transport.
package serial

import (
	"fmt"
	"time"

	"go.bug.st/serial"

	"github.com/robotalks/amulet.go/pkg/transport/stream"
)

// DefaultReadTimeout bounds how long Read blocks without data.
const DefaultReadTimeout = 50 * time.Millisecond

// Config describes the serial port.
type Config struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud"`
	DataBits int    `yaml:"data_bits"`
	Parity   string `yaml:"parity"`
	StopBits string `yaml:"stop_bits"`
}

// DefaultConfig is 115200 8N1.
func DefaultConfig() Config {
	return Config{BaudRate: 115200, DataBits: 8, Parity: "none", StopBits: "1"}
}

// Mode converts the config to serial.Mode.
func (c Config) Mode() (*serial.Mode, error) {
	parity, err := ParseParity(c.Parity)
	if err != nil {
		return nil, err
	}
	stopBits, err := ParseStopBits(c.StopBits)
	if err != nil {
		return nil, err
	}
	dataBits := c.DataBits
	if dataBits == 0 {
		dataBits = 8
	}
	return &serial.Mode{
		BaudRate: c.BaudRate,
		DataBits: dataBits,
		Parity:   parity,
		StopBits: stopBits,
	}, nil
}

// Open opens the port.
func Open(c Config) (*stream.Transport, error) {
	mode, err := c.Mode()
	if err != nil {
		return nil, err
	}
	port, err := serial.Open(c.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Port, err)
	}
	if err := port.SetReadTimeout(DefaultReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", c.Port, err)
	}
	t := stream.New(port)
	t.ReadTimeout = true
	return t, nil
}

// Ports lists the serial ports of the system.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}

// ParseParity converts a parity name.
func ParseParity(s string) (serial.Parity, error) {
	switch s {
	case "", "none", "N":
		return serial.NoParity, nil
	case "odd", "O":
		return serial.OddParity, nil
	case "even", "E":
		return serial.EvenParity, nil
	case "mark", "M":
		return serial.MarkParity, nil
	case "space", "S":
		return serial.SpaceParity, nil
	}
	return serial.NoParity, fmt.Errorf("invalid parity %q", s)
}

// ParseStopBits converts a stop bits value.
func ParseStopBits(s string) (serial.StopBits, error) {
	switch s {
	case "", "1":
		return serial.OneStopBit, nil
	case "1.5":
		return serial.OnePointFiveStopBits, nil
	case "2":
		return serial.TwoStopBits, nil
	}
	return serial.OneStopBit, fmt.Errorf("invalid stop bits %q", s)
}
