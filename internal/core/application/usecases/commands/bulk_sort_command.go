package commands

import (
	"errors"
	"strings"

	"parcelhub/internal/core/domain/model/actor"
	"parcelhub/internal/core/domain/services"
	"parcelhub/internal/pkg/guard"
)

var ErrBulkSortCommandIsNotConstructed = errors.New("BulkSortCommand must be created via NewBulkSortCommand constructor")

// BulkSortCommand sorts a set of parcels into one bin and route code.
type BulkSortCommand struct {
	actor     actor.Context
	parcelIDs []string
	sortBin   string
	routeCode string

	guard guard.ConstructorGuard
}

// NewBulkSortCommand checks the shape of the request only. Bin and route are
// checked by the state machine so they surface as MissingField per parcel.
func NewBulkSortCommand(act actor.Context, parcelIDs []string, sortBin, routeCode string) (BulkSortCommand, error) {
	c := BulkSortCommand{
		sortBin:   strings.TrimSpace(sortBin),
		routeCode: strings.TrimSpace(routeCode),
	}

	if err := errors.Join(
		c.setActor(act),
		c.setParcelIDs(parcelIDs),
	); err != nil {
		return BulkSortCommand{}, err
	}

	c.guard = guard.NewConstructorGuard()
	return c, nil
}

func (c BulkSortCommand) Validate() error {
	return c.guard.Validate(ErrBulkSortCommandIsNotConstructed)
}

func (c BulkSortCommand) ParcelIDs() []string {
	out := make([]string, len(c.parcelIDs))
	copy(out, c.parcelIDs)
	return out
}

func (c *BulkSortCommand) setActor(act actor.Context) error {
	if err := act.Validate(); err != nil {
		return err
	}
	c.actor = act
	return nil
}

func (c *BulkSortCommand) setParcelIDs(ids []string) error {
	cleaned, err := cleanParcelIDs(ids)
	if err != nil {
		return err
	}
	c.parcelIDs = cleaned
	return nil
}

// cleanParcelIDs trims and de-duplicates ids, keeping first-seen order.
func cleanParcelIDs(ids []string) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	cleaned := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		cleaned = append(cleaned, id)
	}
	if err := services.CheckBatchSize(len(cleaned)); err != nil {
		return nil, err
	}
	return cleaned, nil
}
