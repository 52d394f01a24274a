package engine

import (
	"errors"
	"testing"
)

func newTestEngine(t *testing.T, width, height, x, y int) *Engine {
	t.Helper()
	e, err := New(width, height, x, y)
	if err != nil {
		t.Fatalf("New(%d, %d, %d, %d) failed: %v", width, height, x, y, err)
	}
	return e
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		x, y          int
		wantErr       error
	}{
		{"valid", 8, 8, 0, 0, nil},
		{"valid non-square", 3, 7, 2, 6, nil},
		{"zero width", 0, 5, 0, 0, ErrBadDimensions},
		{"negative height", 5, -1, 0, 0, ErrBadDimensions},
		{"start x out of bounds", 5, 5, 5, 0, ErrStartOutOfBounds},
		{"start y negative", 5, 5, 0, -1, ErrStartOutOfBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.width, tt.height, tt.x, tt.y)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_InitialState(t *testing.T) {
	e := newTestEngine(t, 6, 4, 2, 3)

	pose := e.Pose()
	if pose.X != 2 || pose.Y != 3 {
		t.Errorf("start pose = (%d, %d), want (2, 3)", pose.X, pose.Y)
	}
	if pose.Facing != East {
		t.Errorf("start facing = %s, want east", pose.Facing)
	}
	if e.Halted() {
		t.Error("new engine should not be halted")
	}
	if trail := e.Trail(); len(trail) != 1 || trail[0] != (Position{X: 2, Y: 3}) {
		t.Errorf("trail = %v, want just the start cell", trail)
	}
}

func TestApply_VectorSum(t *testing.T) {
	// Interior walk with no walls: final position is the vector sum of
	// resolved deltas, trail length is accepted moves + 1.
	e := newTestEngine(t, 10, 10, 5, 5)

	moves := []Direction{Up, Up, Right, Down, Left, Left, Up}
	for i, dir := range moves {
		if !e.Apply(dir) {
			t.Fatalf("move %d (%s) unexpectedly rejected", i, dir)
		}
	}

	pose := e.Pose()
	if pose.X != 4 || pose.Y != 7 {
		t.Errorf("final pose = (%d, %d), want (4, 7)", pose.X, pose.Y)
	}
	if got := len(e.Trail()); got != len(moves)+1 {
		t.Errorf("trail length = %d, want %d", got, len(moves)+1)
	}
}

func TestApply_BackwardFacingSymmetry(t *testing.T) {
	// Facing east, backward resolves to the same delta as an absolute left.
	left := newTestEngine(t, 5, 5, 2, 2)
	back := newTestEngine(t, 5, 5, 2, 2)

	if !left.Apply(Left) || !back.Apply(Backward) {
		t.Fatal("both moves should be accepted")
	}
	if left.Pose() != back.Pose() {
		t.Errorf("left pose %+v != backward pose %+v", left.Pose(), back.Pose())
	}
}

func TestApply_HaltLaw(t *testing.T) {
	e := newTestEngine(t, 3, 3, 0, 0)

	if e.Apply(Down) {
		t.Fatal("move off the bottom edge should be rejected")
	}
	if !e.Halted() {
		t.Fatal("engine should halt after an illegal move")
	}

	pose := e.Pose()
	trailLen := len(e.Trail())
	logLen := len(e.MoveLog())

	// Every subsequent move is rejected with no state change, legal or not.
	for _, dir := range []Direction{Up, Right, Left} {
		if e.Apply(dir) {
			t.Errorf("move %s accepted while halted", dir)
		}
	}
	if e.Pose() != pose {
		t.Error("pose changed while halted")
	}
	if len(e.Trail()) != trailLen {
		t.Error("trail changed while halted")
	}
	if len(e.MoveLog()) != logLen {
		t.Error("move log grew while halted")
	}
}

func TestApply_InvalidDirectionHalts(t *testing.T) {
	e := newTestEngine(t, 3, 3, 1, 1)

	if e.Apply(Direction("forward")) {
		t.Fatal("unknown direction should be rejected")
	}
	if !e.Halted() {
		t.Error("unknown direction should halt the simulation")
	}
	log := e.MoveLog()
	if len(log) != 1 || log[0].Reason != ReasonBadDirection {
		t.Errorf("log = %+v, want one bad-direction record", log)
	}
}

func TestReset_Law(t *testing.T) {
	e := newTestEngine(t, 4, 4, 1, 1)

	e.Apply(Right)
	e.Apply(Up)
	e.Apply(Up)
	e.Apply(Up) // off the top edge: halts
	if !e.Halted() {
		t.Fatal("expected halt")
	}
	logBefore := len(e.MoveLog())

	e.Reset()

	if e.Halted() {
		t.Error("reset should clear the halt flag")
	}
	if pose := e.Pose(); pose.X != 1 || pose.Y != 1 {
		t.Errorf("pose after reset = (%d, %d), want construction pose (1, 1)", pose.X, pose.Y)
	}
	if trail := e.Trail(); len(trail) != 1 {
		t.Errorf("trail after reset = %v, want just the start cell", trail)
	}

	// The log is cumulative: reset preserves it and numbering continues.
	if got := len(e.MoveLog()); got != logBefore {
		t.Errorf("log length after reset = %d, want %d", got, logBefore)
	}
	e.Apply(Up)
	log := e.MoveLog()
	if last := log[len(log)-1]; last.Seq != logBefore+1 {
		t.Errorf("seq after reset = %d, want %d", last.Seq, logBefore+1)
	}
}

func TestScenario_WallCollisionWalk(t *testing.T) {
	// 6x6 grid, walls at (3,3) and (4,3), start (0,0). Three rights reach
	// (3,0); two ups reach (3,2); the third up hits the wall at (3,3).
	e := newTestEngine(t, 6, 6, 0, 0)
	if err := e.AddWall(3, 3); err != nil {
		t.Fatal(err)
	}
	if err := e.AddWall(4, 3); err != nil {
		t.Fatal(err)
	}

	steps := []struct {
		dir        Direction
		want       bool
		wantX, wantY int
	}{
		{Right, true, 1, 0},
		{Right, true, 2, 0},
		{Right, true, 3, 0},
		{Up, true, 3, 1},
		{Up, true, 3, 2},
		{Up, false, 3, 2}, // (3,3) is a wall
	}

	for i, s := range steps {
		got := e.Apply(s.dir)
		if got != s.want {
			t.Fatalf("step %d (%s): got %v, want %v", i, s.dir, got, s.want)
		}
		if pose := e.Pose(); pose.X != s.wantX || pose.Y != s.wantY {
			t.Fatalf("step %d (%s): pose = (%d, %d), want (%d, %d)", i, s.dir, pose.X, pose.Y, s.wantX, s.wantY)
		}
	}

	if !e.Halted() {
		t.Error("engine should be halted after hitting the wall")
	}
	log := e.MoveLog()
	if last := log[len(log)-1]; last.Reason != ReasonObstacle || last.Success {
		t.Errorf("last record = %+v, want failed obstacle record", last)
	}
}

func TestScenario_BackwardOutOfBounds(t *testing.T) {
	// 3x3 grid, start (1,1) facing east: left lands at (0,1), then backward
	// resolves to the west delta and falls off the grid.
	e := newTestEngine(t, 3, 3, 1, 1)

	if !e.Apply(Left) {
		t.Fatal("left from (1,1) should succeed")
	}
	if pose := e.Pose(); pose.X != 0 || pose.Y != 1 {
		t.Fatalf("pose = (%d, %d), want (0, 1)", pose.X, pose.Y)
	}

	if e.Apply(Backward) {
		t.Fatal("backward from (0,1) facing east should fall off the grid")
	}
	if !e.Halted() {
		t.Error("engine should be halted")
	}
	log := e.MoveLog()
	last := log[len(log)-1]
	if last.Reason != ReasonBoundary || last.DX != -1 || last.DY != 0 {
		t.Errorf("last record = %+v, want boundary rejection with west delta", last)
	}
}

func TestAddWall(t *testing.T) {
	e := newTestEngine(t, 5, 5, 2, 2)

	if err := e.AddWall(1, 1); err != nil {
		t.Fatalf("AddWall(1, 1) failed: %v", err)
	}
	// Duplicate insert is a no-op.
	if err := e.AddWall(1, 1); err != nil {
		t.Fatalf("duplicate AddWall failed: %v", err)
	}
	if !e.HasWall(1, 1) {
		t.Error("wall at (1, 1) missing")
	}

	if err := e.AddWall(5, 0); !errors.Is(err, ErrWallOutOfBounds) {
		t.Errorf("out-of-bounds wall: got %v, want ErrWallOutOfBounds", err)
	}
	if err := e.AddWall(2, 2); !errors.Is(err, ErrWallOnRobot) {
		t.Errorf("wall on robot: got %v, want ErrWallOnRobot", err)
	}
}

func TestAddWall_DoesNotInvalidatePose(t *testing.T) {
	e := newTestEngine(t, 5, 5, 0, 0)
	if !e.Apply(Right) {
		t.Fatal("move failed")
	}
	// Wall added behind the robot: no teleport, no halt.
	if err := e.AddWall(0, 0); err != nil {
		t.Fatalf("AddWall failed: %v", err)
	}
	if e.Halted() {
		t.Error("adding a wall must not halt the simulation")
	}
	if pose := e.Pose(); pose.X != 1 || pose.Y != 0 {
		t.Errorf("pose = (%d, %d), want (1, 0)", pose.X, pose.Y)
	}
}

func TestTrack_MirrorsWithoutHalting(t *testing.T) {
	e := newTestEngine(t, 3, 3, 0, 0)

	// Dispatched move inside the grid advances the mirror.
	if !e.Track(Up, BackendMock, true) {
		t.Fatal("dispatched move should report success")
	}
	if pose := e.Pose(); pose.X != 0 || pose.Y != 1 {
		t.Errorf("pose = (%d, %d), want (0, 1)", pose.X, pose.Y)
	}

	// Dispatched move off the grid still succeeds but leaves the mirror put.
	if !e.Track(Left, BackendMock, true) {
		t.Fatal("dispatched off-grid move should still report success")
	}
	if e.Halted() {
		t.Error("tracking must never halt")
	}
	if pose := e.Pose(); pose.X != 0 || pose.Y != 1 {
		t.Errorf("pose = (%d, %d), want unchanged (0, 1)", pose.X, pose.Y)
	}
	log := e.MoveLog()
	if last := log[len(log)-1]; last.Reason != ReasonOffGrid || !last.Success {
		t.Errorf("last record = %+v, want successful off-grid record", last)
	}

	// Dispatch failure is a failed record, still no halt.
	if e.Track(Up, BackendHardware, false) {
		t.Error("failed dispatch should report false")
	}
	if e.Halted() {
		t.Error("tracking must never halt")
	}
}

func TestTrack_BackendMarkers(t *testing.T) {
	e := newTestEngine(t, 4, 4, 0, 0)
	e.Track(Up, BackendMock, true)
	e.Track(Right, BackendHardware, true)

	log := e.MoveLog()
	if log[0].Backend != BackendMock {
		t.Errorf("record 0 backend = %s, want mock", log[0].Backend)
	}
	if log[1].Backend != BackendHardware {
		t.Errorf("record 1 backend = %s, want hardware", log[1].Backend)
	}
}

func TestPossibleMoves(t *testing.T) {
	e := newTestEngine(t, 2, 2, 0, 0)
	// From the bottom-left corner only up and right are legal; backward
	// (west, facing east) is off-grid.
	got := e.PossibleMoves()
	want := map[Direction]bool{Up: true, Right: true}
	if len(got) != len(want) {
		t.Fatalf("possible moves = %v, want up and right", got)
	}
	for _, dir := range got {
		if !want[dir] {
			t.Errorf("unexpected possible move %s", dir)
		}
	}
}

func TestSnapshot(t *testing.T) {
	e := newTestEngine(t, 4, 3, 0, 0)
	e.AddWall(2, 1)
	e.AddWall(1, 2)
	e.Apply(Right)

	s := e.Snapshot()
	if s.Width != 4 || s.Height != 3 {
		t.Errorf("dims = %dx%d, want 4x3", s.Width, s.Height)
	}
	if len(s.Walls) != 2 || s.Walls[0] != (Position{X: 2, Y: 1}) {
		t.Errorf("walls = %v, want sorted row-major", s.Walls)
	}
	if s.Moves != 1 || s.Pose.X != 1 {
		t.Errorf("snapshot = %+v, want one accepted move to (1, 0)", s)
	}

	// Snapshot is detached from engine state.
	s.Walls[0] = Position{X: 9, Y: 9}
	if !e.HasWall(2, 1) {
		t.Error("mutating a snapshot must not affect the engine")
	}
}

func TestPoseIdempotent(t *testing.T) {
	e := newTestEngine(t, 3, 3, 1, 1)
	if e.Pose() != e.Pose() {
		t.Error("Pose must be idempotent between moves")
	}
	p := e.Pose()
	p.X = 99
	if e.Pose().X == 99 {
		t.Error("callers must not be able to mutate engine state through Pose")
	}
}
