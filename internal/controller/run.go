package controller

import (
	"context"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Run drives the populate/wait/process cycle until the context is
// cancelled, then tears the session down. Teardown happens here, on the
// same goroutine as every Process call, so the watch set and the bus
// handle are never touched concurrently. The select timeout bounds
// shutdown latency.
func (c *Controller) Run(ctx context.Context) error {
	defer func() {
		if err := c.Close(); err != nil {
			log.WithError(err).Warn("Failed to close daemon controller")
		}
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}

		var readSet, writeSet, errSet unix.FdSet
		maxFd := -1
		c.UpdateFdSet(&readSet, &writeSet, &errSet, &maxFd)

		tv := unix.Timeval{Usec: 250000}
		if _, err := unix.Select(maxFd+1, &readSet, &writeSet, &errSet, &tv); err != nil {
			if err == unix.EINTR {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		c.Process(&readSet, &writeSet, &errSet)
	}
}
