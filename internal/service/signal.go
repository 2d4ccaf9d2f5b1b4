// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

type signalSource interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

// stdLibSignalSource is the production implementation.
type stdLibSignalSource struct{}

func (stdLibSignalSource) Notify(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}

func (stdLibSignalSource) Stop(c chan<- os.Signal) {
	signal.Stop(c)
}

// HandleSignals reacts to user signals: SIGUSR1 forces an immediate address
// refresh, SIGUSR2 logs the currently resolved address.
func (s *Service) HandleSignals(ctx context.Context, sigChan chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigChan:
			switch sig {
			case syscall.SIGUSR1:
				s.refreshAddress(ctx)
				s.printAddress(ctx)
			case syscall.SIGUSR2:
				s.stateLock.RLock()
				s.logger.Info("currently resolved address",
					slog.String("address", s.address.String()),
					slog.Float64("latitude", s.position.Latitude()),
					slog.Float64("longitude", s.position.Longitude()))
				s.stateLock.RUnlock()
			}
		}
	}
}
