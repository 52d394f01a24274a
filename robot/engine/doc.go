// Package engine implements the shared motion and collision model for the
// robot grid.
//
// The engine owns all grid state (dimensions, walls, pose, trail, halt
// flag, and the append-only move log) and is the only place boundary and
// collision logic lives. Both the visual simulator and the physical robot
// backends run against the same engine, which is what keeps the two
// indistinguishable from the caller's perspective.
//
// Movement model:
//
//   - up, down, left, right are grid-absolute single-cell steps
//   - backward is resolved against the robot's current facing (the dog
//     starts facing east, so backward initially means west)
//   - the first illegal move halts the simulation until Reset is called
//
// Usage:
//
//	eng, err := engine.New(8, 8, 0, 0)
//	if err != nil {
//		log.Fatal(err)
//	}
//	eng.AddWall(3, 1)
//	ok := eng.Apply(engine.Right)
//	pose := eng.Pose()
//
// For real-robot backends the grid is a best-effort mirror, not the
// authority; those paths use Track instead of Apply so the mirror never
// halts and success reflects command dispatch.
package engine
