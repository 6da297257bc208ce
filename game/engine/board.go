package engine

import (
	"fmt"
	"strings"
)

// Rules is the narrow board capability GameState depends on. Alternate
// board implementations only need to satisfy this.
type Rules interface {
	Rows() int
	Cols() int
	DirectionsList() []Direction
	PieceAt(row, col int) *Piece
	PlacePiece(row, col int, piece *Piece) bool
	HasPlayerWon(row, col int, direction Direction, player Player) bool
	BoopPawn(row, col int, direction Direction, player Player) *BoopResult
	PromoteKittens(row, col int, direction Direction, player Player) []Coordinate
}

// Board is a fixed-size grid of cells stored as a row-major arena
type Board struct {
	rows  int
	cols  int
	cells []Cell
}

var _ Rules = (*Board)(nil)

// NewBoard allocates a rows x cols board and wires every cell's neighbors
func NewBoard(rows, cols int) (*Board, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("board dimensions must be positive, got %dx%d", rows, cols)
	}

	b := &Board{
		rows:  rows,
		cols:  cols,
		cells: make([]Cell, rows*cols),
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			b.cells[b.index(r, c)] = Cell{row: r, col: c, board: b}
		}
	}

	// Adjacency is computed exactly once; everything after is graph traversal
	for i := range b.cells {
		cell := &b.cells[i]
		for _, dir := range Directions {
			dr, dc := dir.Delta()
			cell.setNeighbor(dir, b.GetCell(cell.row+dr, cell.col+dc))
		}
	}

	return b, nil
}

// Rows returns the number of rows
func (b *Board) Rows() int { return b.rows }

// Cols returns the number of columns
func (b *Board) Cols() int { return b.cols }

// DirectionsList returns the 8-way scan order
func (b *Board) DirectionsList() []Direction {
	return Directions
}

func (b *Board) index(row, col int) int {
	return row*b.cols + col
}

// InBounds reports whether (row, col) is on the grid
func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.rows && col >= 0 && col < b.cols
}

// GetCell returns the cell at (row, col), or nil when out of bounds
func (b *Board) GetCell(row, col int) *Cell {
	if !b.InBounds(row, col) {
		return nil
	}
	return &b.cells[b.index(row, col)]
}

// PieceAt returns the piece at (row, col), or nil
func (b *Board) PieceAt(row, col int) *Piece {
	cell := b.GetCell(row, col)
	if cell == nil {
		return nil
	}
	return cell.piece
}

// PlacePiece puts a piece on an empty in-bounds cell
func (b *Board) PlacePiece(row, col int, piece *Piece) bool {
	cell := b.GetCell(row, col)
	if cell == nil || cell.piece != nil || piece == nil {
		return false
	}
	cell.piece = piece
	return true
}

// ClearCell empties the cell and returns the piece it held
func (b *Board) ClearCell(row, col int) *Piece {
	cell := b.GetCell(row, col)
	if cell == nil {
		return nil
	}
	piece := cell.piece
	cell.piece = nil
	return piece
}

// canAffect reports whether a piece of tier pusher may boop a piece of tier target
func canAffect(pusher, target PieceType) bool {
	switch pusher {
	case Cat:
		return true
	case Kitten:
		return target == Kitten
	}
	return false
}

// CanBoop reports whether the piece at (row, col) can push its neighbor in direction
func (b *Board) CanBoop(row, col int, direction Direction, player Player) bool {
	cell := b.GetCell(row, col)
	if cell == nil || cell.piece == nil {
		return false
	}

	neighbor := cell.GetNeighbor(direction)
	if neighbor == nil || neighbor.piece == nil || neighbor.piece.Owner == player {
		return false
	}

	if !canAffect(cell.piece.Type, neighbor.piece.Type) {
		return false
	}

	// A piece with another piece right behind it is blocked
	beyond := neighbor.GetNeighbor(direction)
	return beyond == nil || beyond.piece == nil
}

// CanPromote reports whether three of player's kittens line up through
// (row, col) along direction. The third kitten may sit beyond the
// neighbor or behind the origin.
func (b *Board) CanPromote(row, col int, direction Direction, player Player) bool {
	_, ok := b.promotionTriple(row, col, direction, player)
	return ok
}

// promotionTriple returns origin, neighbor and whichever third cell
// completes the line, preferring the cell beyond the neighbor.
func (b *Board) promotionTriple(row, col int, direction Direction, player Player) ([3]*Cell, bool) {
	var triple [3]*Cell

	origin := b.GetCell(row, col)
	if !origin.holds(player, Kitten) {
		return triple, false
	}

	neighbor := origin.GetNeighbor(direction)
	if !neighbor.holds(player, Kitten) {
		return triple, false
	}

	if beyond := neighbor.GetNeighbor(direction); beyond.holds(player, Kitten) {
		return [3]*Cell{origin, neighbor, beyond}, true
	}
	if behind := origin.GetNeighbor(direction.Opposite()); behind.holds(player, Kitten) {
		return [3]*Cell{origin, neighbor, behind}, true
	}

	return triple, false
}

// HasPlayerWon reports whether the neighbor in direction and the cell
// beyond it are both player's cats. The origin is the caller's concern.
func (b *Board) HasPlayerWon(row, col int, direction Direction, player Player) bool {
	cell := b.GetCell(row, col)
	if cell == nil {
		return false
	}

	neighbor := cell.GetNeighbor(direction)
	if !neighbor.holds(player, Cat) {
		return false
	}

	return neighbor.GetNeighbor(direction).holds(player, Cat)
}

// BoopPawn pushes the neighbor in direction one cell further, or off the
// board at the edge. Returns nil without mutating when CanBoop is false.
func (b *Board) BoopPawn(row, col int, direction Direction, player Player) *BoopResult {
	if !b.CanBoop(row, col, direction, player) {
		return nil
	}

	neighbor := b.GetCell(row, col).GetNeighbor(direction)
	pushed := neighbor.piece
	beyond := neighbor.GetNeighbor(direction)

	result := &BoopResult{
		PieceType: pushed.Type,
		Player:    pushed.Owner,
		Origin:    neighbor.Coordinate(),
	}

	neighbor.piece = nil
	if beyond != nil {
		beyond.piece = pushed
		dest := beyond.Coordinate()
		result.Destination = &dest
	}

	return result
}

// PromoteKittens clears a promotable triple and returns the cleared
// coordinates, origin first. Returns nil without mutating otherwise.
func (b *Board) PromoteKittens(row, col int, direction Direction, player Player) []Coordinate {
	triple, ok := b.promotionTriple(row, col, direction, player)
	if !ok {
		return nil
	}

	cleared := make([]Coordinate, 0, len(triple))
	for _, cell := range triple {
		cell.piece = nil
		cleared = append(cleared, cell.Coordinate())
	}
	return cleared
}

// Snapshot returns a read-only copy of every cell's piece, row-major
func (b *Board) Snapshot() [][]*Piece {
	grid := make([][]*Piece, b.rows)
	for r := 0; r < b.rows; r++ {
		grid[r] = make([]*Piece, b.cols)
		for c := 0; c < b.cols; c++ {
			if p := b.cells[b.index(r, c)].piece; p != nil {
				cp := *p
				grid[r][c] = &cp
			}
		}
	}
	return grid
}

// Render draws the board as text: '.' empty, o/O PlayerOne kitten/cat,
// x/X PlayerTwo kitten/cat
func (b *Board) Render() string {
	return RenderGrid(b.Snapshot())
}

// RenderGrid draws a snapshot grid using the same symbols as Board.Render
func RenderGrid(grid [][]*Piece) string {
	var sb strings.Builder
	for r, row := range grid {
		for _, p := range row {
			sb.WriteByte(PieceSymbol(p))
		}
		if r < len(grid)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// PieceSymbol returns the single-character symbol for a piece
func PieceSymbol(p *Piece) byte {
	if p == nil {
		return '.'
	}
	symbol := byte('o')
	if p.Owner == PlayerTwo {
		symbol = 'x'
	}
	if p.Type == Cat {
		symbol -= 'a' - 'A'
	}
	return symbol
}
