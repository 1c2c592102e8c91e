package hanoi

// Snapshot is an immutable copy of the puzzle for rendering and transport.
type Snapshot struct {
	Rods         [Rods]Rod `json:"rods"`
	Disks        int       `json:"disk_count"`
	Moves        int       `json:"move_count"`
	OptimalMoves int       `json:"optimal_move_count"`
	Solved       bool      `json:"solved"`
}

// Snapshot copies the current state, judging the win against target.
func (p *Puzzle) Snapshot(target int) Snapshot {
	s := Snapshot{
		Disks:        p.disks,
		Moves:        p.moves,
		OptimalMoves: OptimalMoves(p.disks),
		Solved:       p.IsSolved(target, p.disks),
	}
	for i := range p.rods {
		s.Rods[i] = append(Rod{}, p.rods[i]...)
	}
	return s
}

// Stacked reports whether every rod is strictly decreasing bottom to top.
func (s Snapshot) Stacked() bool {
	for _, rod := range s.Rods {
		for i := 1; i < len(rod); i++ {
			if rod[i] >= rod[i-1] {
				return false
			}
		}
	}
	return true
}
