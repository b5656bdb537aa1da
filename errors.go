package canopy

import "errors"

var (
	// ErrNilSurface is returned by NewStage when no drawing surface is given.
	ErrNilSurface = errors.New("canopy: stage requires a drawing surface")
	// ErrStageDestroyed is reported to asset callbacks that complete after
	// Stage.Destroy.
	ErrStageDestroyed = errors.New("canopy: stage destroyed")
	// ErrNoSteps is returned by LoadTestScript for an empty script.
	ErrNoSteps = errors.New("canopy: test script has no steps")
)
