// Package gochannel provides the in-memory event channel used by single-process
// deployments and tests.
package gochannel

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const defaultBuffer = 1000

// NewChannel returns a pub/sub where publishing never waits for slow listeners.
// Events are dropped when nobody subscribed yet.
func NewChannel(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: defaultBuffer}, logger)
}

// NewTestChannel keeps events published before Subscribe and blocks publishers until
// the listener acks, so tests observe deliveries in order.
func NewTestChannel(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            10,
		Persistent:                     true,
		BlockPublishUntilSubscriberAck: true,
	}, logger)
}
