package list

import "errors"

var (
	// ErrInvalidMaxLevel flags a non-positive max level. NewLocked and
	// NewFat clamp to the default instead of raising it themselves;
	// cmd/sklbench logs it from its own flag validation, where an
	// invalid value is actually an error rather than a default to fall
	// back to.
	ErrInvalidMaxLevel = errors.New("list: max level must be positive")
	// ErrInvalidProbability flags a probability outside (0, 1). Same
	// constructor-clamps-CLI-validates split as ErrInvalidMaxLevel.
	ErrInvalidProbability = errors.New("list: probability must be in (0, 1)")
)
