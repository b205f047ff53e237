package kafka

import (
	"context"
	"testing"
)

func TestProducerCloseAfterCancel(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:1"}, "test.topic", 8)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	// cancellation already closed the inbox; a late Close from the
	// shutdown sequence must not panic
	cancel()
	p.WaitClosed()
	p.Close()
}

func TestProducerCancelAfterClose(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:1"}, "test.topic", 8)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	p.Close()
	cancel()
	p.WaitClosed()
}
