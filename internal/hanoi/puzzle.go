// Package hanoi holds the three-rod puzzle model, the legality rule and the
// recursive optimal move order.
package hanoi

import "fmt"

// Rods is the fixed number of rods.
const Rods = 3

// Default rod roles used by the solver and by win detection.
const (
	SourceRod      = 0
	AuxiliaryRod   = 1
	DestinationRod = 2
)

// Disk is a disk size. Larger number means larger disk.
type Disk int

// Rod is a stack of disks; the last element is the top.
type Rod []Disk

// Move relocates the top disk of From onto To. Disk is set once applied.
type Move struct {
	From int  `json:"from"`
	To   int  `json:"to"`
	Disk Disk `json:"disk,omitempty"`
}

// Puzzle is the rod/disk state. It is not safe for concurrent use; the
// session controller owns it and serialises access.
type Puzzle struct {
	rods  [Rods]Rod
	moves int
	disks int
}

// New creates a puzzle with all disks on rod 0.
func New(disks int) (*Puzzle, error) {
	p := &Puzzle{}
	if err := p.Initialize(disks); err != nil {
		return nil, err
	}
	return p, nil
}

// Initialize resets the rods to [[disks..1], [], []] and clears the move count.
func (p *Puzzle) Initialize(disks int) error {
	if disks < 1 {
		return fmt.Errorf("disk count %d: %w", disks, ErrPrecondition)
	}

	source := make(Rod, 0, disks)
	for d := disks; d >= 1; d-- {
		source = append(source, Disk(d))
	}

	p.rods = [Rods]Rod{source, make(Rod, 0, disks), make(Rod, 0, disks)}
	p.moves = 0
	p.disks = disks
	return nil
}

// Disks returns the disk count the puzzle was initialized with.
func (p *Puzzle) Disks() int {
	return p.disks
}

// Moves returns the number of applied moves.
func (p *Puzzle) Moves() int {
	return p.moves
}

// Rod returns a copy of rod i, bottom first. Nil for an unknown rod.
func (p *Puzzle) Rod(i int) Rod {
	if !validRod(i) {
		return nil
	}
	return append(Rod{}, p.rods[i]...)
}

// Top returns the top disk of rod i, or false if it is empty or unknown.
func (p *Puzzle) Top(i int) (Disk, bool) {
	if !validRod(i) || len(p.rods[i]) == 0 {
		return 0, false
	}
	rod := p.rods[i]
	return rod[len(rod)-1], true
}

// IsValidMove reports whether to is empty or the top of from is strictly
// smaller than the top of to. It does not check that from holds a disk.
func (p *Puzzle) IsValidMove(from, to int) bool {
	if !validRod(from) || !validRod(to) {
		return false
	}
	dst, ok := p.Top(to)
	if !ok {
		return true
	}
	src, ok := p.Top(from)
	return ok && src < dst
}

// Check applies the full legality rule and explains a refusal.
func (p *Puzzle) Check(from, to int) error {
	switch {
	case !validRod(from) || !validRod(to):
		return &MoveError{From: from, To: to, Reason: ReasonUnknownRod}
	case len(p.rods[from]) == 0:
		return &MoveError{From: from, To: to, Reason: ReasonEmptySource}
	case from == to:
		return &MoveError{From: from, To: to, Reason: ReasonSameRod}
	case !p.IsValidMove(from, to):
		return &MoveError{From: from, To: to, Reason: ReasonLargerOnSmaller}
	}
	return nil
}

// ApplyMove pops the top of from onto to and counts the move. The puzzle is
// left untouched when Check refuses the move.
func (p *Puzzle) ApplyMove(from, to int) (Disk, error) {
	if err := p.Check(from, to); err != nil {
		return 0, err
	}

	src := p.rods[from]
	disk := src[len(src)-1]
	p.rods[from] = src[:len(src)-1]
	p.rods[to] = append(p.rods[to], disk)
	p.moves++
	return disk, nil
}

// IsSolved reports whether target holds exactly disks disks.
func (p *Puzzle) IsSolved(target, disks int) bool {
	return validRod(target) && len(p.rods[target]) == disks
}

// OptimalMoves returns 2^n - 1.
func OptimalMoves(n int) int {
	if n < 1 {
		return 0
	}
	return 1<<uint(n) - 1
}

func validRod(i int) bool {
	return i >= 0 && i < Rods
}
