package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

//NewContext is cancelled on SIGINT or SIGTERM
func NewContext() context.Context {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-c
		signal.Stop(c)
		cancel()
	}()
	return ctx
}
