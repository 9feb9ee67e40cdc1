package commands

import (
	"errors"

	"orderflow/internal/pkg/guard"
)

var (
	ErrFlagStaleLocationsCommandIsNotConstructed = errors.New(
		"FlagStaleLocationsCommand must be created via NewFlagStaleLocationsCommand constructor",
	)
)

// FlagStaleLocationsCommand triggers a scan of all delivering orders for
// stale or missing delivery positions. This batch operation alerts admins
// when a delivery client has stopped reporting.
type FlagStaleLocationsCommand struct {
	guard guard.ConstructorGuard
}

// NewFlagStaleLocationsCommand creates a command to scan for stale delivery
// positions. This is a parameterless command covering all active deliveries.
func NewFlagStaleLocationsCommand() FlagStaleLocationsCommand {
	return FlagStaleLocationsCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
// Returns ErrFlagStaleLocationsCommandIsNotConstructed if validation fails.
func (c *FlagStaleLocationsCommand) Validate() error {
	return c.guard.Validate(ErrFlagStaleLocationsCommandIsNotConstructed)
}
