package events

import (
	platformevents "leadchat_backend/platform/events"
	"leadchat_backend/platform/logger"
)

// InMemoryBus delivers conversation and expert events within one process.
type InMemoryBus = platformevents.InMemoryBus

// NewInMemoryBus creates the bus shared by the conversation and experts
// modules. Each binary builds exactly one and calls Wait before exiting so
// pending handoff handlers finish.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
