package commands

import (
	"errors"
	"strings"

	"parcelhub/internal/pkg/errs"
	"parcelhub/internal/pkg/guard"
)

var ErrRelayEventsCommandIsNotConstructed = errors.New(
	"RelayEventsCommand must be created via NewRelayEventsCommand constructor",
)

const MaxRelayBatchSize = 1000

// RelayEventsCommand publishes the next page of the warehouse log.
type RelayEventsCommand struct {
	relay     string
	batchSize int

	guard guard.ConstructorGuard
}

func NewRelayEventsCommand(relay string, batchSize int) (RelayEventsCommand, error) {
	relay = strings.TrimSpace(relay)
	if relay == "" {
		return RelayEventsCommand{}, errs.NewValueIsRequiredError("relay")
	}
	if batchSize < 1 || batchSize > MaxRelayBatchSize {
		return RelayEventsCommand{}, errs.NewValueIsOutOfRangeError("batchSize", batchSize, 1, MaxRelayBatchSize)
	}
	return RelayEventsCommand{relay: relay, batchSize: batchSize, guard: guard.NewConstructorGuard()}, nil
}

func (c RelayEventsCommand) Validate() error {
	return c.guard.Validate(ErrRelayEventsCommandIsNotConstructed)
}
