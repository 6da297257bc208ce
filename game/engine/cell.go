package engine

// noNeighbor marks a neighbor slot that falls outside the grid
const noNeighbor = -1

// Cell is a single grid location. Neighbor slots hold arena indices into
// the owning board and are wired once at construction.
type Cell struct {
	row       int
	col       int
	piece     *Piece
	board     *Board
	neighbors [8]int
}

// Row returns the cell's row
func (c *Cell) Row() int { return c.row }

// Col returns the cell's column
func (c *Cell) Col() int { return c.col }

// Coordinate returns the cell location
func (c *Cell) Coordinate() Coordinate {
	return Coordinate{Row: c.row, Col: c.col}
}

// Piece returns the piece on the cell, or nil when empty
func (c *Cell) Piece() *Piece { return c.piece }

// IsEmpty reports whether the cell holds no piece
func (c *Cell) IsEmpty() bool { return c.piece == nil }

// holds reports whether the cell has a piece of the given owner and type
func (c *Cell) holds(owner Player, pieceType PieceType) bool {
	return c != nil && c.piece != nil && c.piece.Owner == owner && c.piece.Type == pieceType
}

// GetNeighbor returns the adjacent cell in direction, or nil at the edge
func (c *Cell) GetNeighbor(direction Direction) *Cell {
	idx := c.neighbors[direction.index()]
	if idx == noNeighbor {
		return nil
	}
	return &c.board.cells[idx]
}

// setNeighbor wires a neighbor slot; only called while building the board
func (c *Cell) setNeighbor(direction Direction, neighbor *Cell) {
	if neighbor == nil {
		c.neighbors[direction.index()] = noNeighbor
		return
	}
	c.neighbors[direction.index()] = c.board.index(neighbor.row, neighbor.col)
}

// ScanNeighbors returns the occupied neighbors keyed by direction
func (c *Cell) ScanNeighbors() map[Direction]*Cell {
	result := make(map[Direction]*Cell)
	for _, dir := range Directions {
		if n := c.GetNeighbor(dir); n != nil && n.piece != nil {
			result[dir] = n
		}
	}
	return result
}

// NeighborCount returns how many of the 8 slots are on the board
func (c *Cell) NeighborCount() int {
	count := 0
	for _, idx := range c.neighbors {
		if idx != noNeighbor {
			count++
		}
	}
	return count
}
