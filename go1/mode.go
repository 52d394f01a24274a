package go1

// Mode is a controller action accepted by the dog on controller/action.
type Mode string

const (
	ModeDance1       Mode = "dance1"
	ModeDance2       Mode = "dance2"
	ModeStraightHand Mode = "straightHand1"
	ModeDamping      Mode = "damping"
	ModeStandUp      Mode = "standUp"
	ModeStandDown    Mode = "standDown"
	ModeRecoverStand Mode = "recoverStand"
	ModeStand        Mode = "stand"
	ModeWalk         Mode = "walk"
	ModeRun          Mode = "run"
	ModeClimb        Mode = "climb"
)
