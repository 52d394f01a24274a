package engine

// Apply validates and executes one discrete move with the grid as the
// authority. A rejected move freezes the simulation: every later Apply
// returns false without touching state until Reset is called.
func (e *Engine) Apply(dir Direction) bool {
	if e.halted {
		return false
	}

	from := e.pose.Cell()
	dx, dy, err := dir.Delta(e.pose.Facing)
	if err != nil {
		e.appendRecord(dir, 0, 0, from, from, false, ReasonBadDirection, BackendSimulator)
		e.halted = true
		return false
	}

	target := Position{X: from.X + dx, Y: from.Y + dy}
	if !e.InBounds(target.X, target.Y) {
		e.appendRecord(dir, dx, dy, from, target, false, ReasonBoundary, BackendSimulator)
		e.halted = true
		return false
	}
	if _, wall := e.walls[target]; wall {
		e.appendRecord(dir, dx, dy, from, target, false, ReasonObstacle, BackendSimulator)
		e.halted = true
		return false
	}

	e.pose.X = target.X
	e.pose.Y = target.Y
	e.trail = append(e.trail, target)
	e.appendRecord(dir, dx, dy, from, target, true, ReasonSuccess, BackendSimulator)
	return true
}

// Track mirrors a move executed by a real backend. The physical robot has no
// closed-loop position feedback, so the grid is a best-effort mirror here,
// not the authority: success reflects whether the command was dispatched,
// the mirror pose only advances when the step is legal, and the halt flag is
// never set. Every attempt is logged with the backend marker.
func (e *Engine) Track(dir Direction, backend Backend, dispatched bool) bool {
	from := e.pose.Cell()
	dx, dy, err := dir.Delta(e.pose.Facing)
	if err != nil {
		e.appendRecord(dir, 0, 0, from, from, false, ReasonBadDirection, backend)
		return false
	}

	target := Position{X: from.X + dx, Y: from.Y + dy}
	if !dispatched {
		e.appendRecord(dir, dx, dy, from, target, false, ReasonLinkError, backend)
		return false
	}

	if e.InBounds(target.X, target.Y) && !e.HasWall(target.X, target.Y) {
		e.pose.X = target.X
		e.pose.Y = target.Y
		e.trail = append(e.trail, target)
		e.appendRecord(dir, dx, dy, from, target, true, ReasonDispatched, backend)
	} else {
		// The physical robot moved; the mirror just cannot follow.
		e.appendRecord(dir, dx, dy, from, target, true, ReasonOffGrid, backend)
	}
	return true
}

// CanApply reports whether a move would be accepted, without executing it.
func (e *Engine) CanApply(dir Direction) bool {
	if e.halted {
		return false
	}
	dx, dy, err := dir.Delta(e.pose.Facing)
	if err != nil {
		return false
	}
	x, y := e.pose.X+dx, e.pose.Y+dy
	return e.InBounds(x, y) && !e.HasWall(x, y)
}

// PossibleMoves returns the directions that would currently be accepted.
func (e *Engine) PossibleMoves() []Direction {
	var possible []Direction
	for _, dir := range Directions {
		if e.CanApply(dir) {
			possible = append(possible, dir)
		}
	}
	return possible
}
