package nbody

import (
	errorsmod "cosmossdk.io/errors"
)

const codespace = "nbody"

var (
	ErrInvalidTimeStep         = errorsmod.Register(codespace, 2, "invalid time step")
	ErrInvalidPrimaryMass      = errorsmod.Register(codespace, 3, "invalid primary mass")
	ErrInvalidAsteroidCount    = errorsmod.Register(codespace, 4, "invalid asteroid count")
	ErrInvalidPolicy           = errorsmod.Register(codespace, 5, "invalid simulation policy")
	ErrDegenerateConfiguration = errorsmod.Register(codespace, 6, "degenerate configuration")
	ErrReleased                = errorsmod.Register(codespace, 7, "simulation released")
)
