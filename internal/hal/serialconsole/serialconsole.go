// Package serialconsole implements the debug console capability on a real
// serial port. Deinit closes the port before sleep so it can be reopened on
// the recovery path, mirroring the retarget-io deinit/reinit cycle on
// target hardware.
package serialconsole

import (
	"fmt"
	"sync"

	"codeberg.org/mutker/hibernatectl/internal/errors"
	"codeberg.org/mutker/hibernatectl/internal/hal"
	"codeberg.org/mutker/hibernatectl/internal/logger"
	"github.com/tarm/serial"
)

type Console struct {
	name string
	baud int
	mu   sync.Mutex
	port *serial.Port
}

// New prepares a console on the named port. The port is not opened until
// Init is called.
func New(name string, baud int) *Console {
	return &Console{name: name, baud: baud}
}

func (c *Console) Init() error {
	errFactory := errors.New()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port != nil {
		return nil
	}

	port, err := serial.OpenPort(&serial.Config{Name: c.name, Baud: c.baud})
	if err != nil {
		return errFactory.Wrap(errors.ErrConsoleInit, err)
	}

	c.port = port

	return nil
}

func (c *Console) Deinit() error {
	errFactory := errors.New()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port == nil {
		return nil
	}

	if err := c.port.Close(); err != nil {
		return errFactory.Wrap(errors.ErrConsoleDeinit, err)
	}

	c.port = nil

	return nil
}

func (c *Console) Printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port == nil {
		return
	}

	if _, err := fmt.Fprintf(c.port, format, args...); err != nil {
		logger.Warn().Err(err).Msg("Serial console write failed")
	}
}

var _ hal.Console = (*Console)(nil)
