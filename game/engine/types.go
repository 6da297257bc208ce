package engine

import (
	"fmt"
	"strings"
)

// Player identifies one of the two sides of a match
type Player int

const (
	NoPlayer  Player = 0
	PlayerOne Player = 1
	PlayerTwo Player = 2
)

// Valid reports whether p is one of the two playing sides
func (p Player) Valid() bool {
	return p == PlayerOne || p == PlayerTwo
}

// Opponent returns the other side
func (p Player) Opponent() Player {
	if p == PlayerOne {
		return PlayerTwo
	}
	return PlayerOne
}

func (p Player) String() string {
	switch p {
	case PlayerOne:
		return "PlayerOne"
	case PlayerTwo:
		return "PlayerTwo"
	}
	return fmt.Sprintf("Player(%d)", int(p))
}

// Players lists both sides in turn order
var Players = []Player{PlayerOne, PlayerTwo}

// PieceType is the tier of a piece
type PieceType string

const (
	Kitten PieceType = "Kitten"
	Cat    PieceType = "Cat"
)

// Valid reports whether t is a known piece tier
func (t PieceType) Valid() bool {
	return t == Kitten || t == Cat
}

// PieceTypes lists the tiers in ascending order
var PieceTypes = []PieceType{Kitten, Cat}

// ParsePieceType accepts the tier names case-insensitively, plus "k" and "c"
func ParsePieceType(s string) (PieceType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kitten", "k":
		return Kitten, true
	case "cat", "c":
		return Cat, true
	}
	return "", false
}

const (
	DefaultRows       = 6
	DefaultCols       = 6
	DefaultPieceLimit = 8

	// Validation constants
	MinBoardSize = 3
	MaxBoardSize = 20
	MinLimit     = 1
	MaxLimit     = 64

	// promotion returns the three kittens and grants one cat
	promotedKittens = 3
)

// Piece is an immutable value placed on a cell
type Piece struct {
	Type  PieceType `json:"type"`
	Owner Player    `json:"owner"`
}

// NewPiece builds a piece. A missing owner or type is an internal defect
// and panics.
func NewPiece(owner Player, pieceType PieceType) *Piece {
	if !owner.Valid() {
		panic(fmt.Sprintf("engine: piece requires a player, got %v", owner))
	}
	if !pieceType.Valid() {
		panic(fmt.Sprintf("engine: piece requires a type, got %q", string(pieceType)))
	}
	return &Piece{Type: pieceType, Owner: owner}
}

// Coordinate is a (row, col) location on the board
type Coordinate struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Direction is one of the 8 compass keys
type Direction string

const (
	North     Direction = "N"
	NorthEast Direction = "NE"
	East      Direction = "E"
	SouthEast Direction = "SE"
	South     Direction = "S"
	SouthWest Direction = "SW"
	West      Direction = "W"
	NorthWest Direction = "NW"
)

// Directions is the fixed scan order used by every 8-way scan
var Directions = []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

var directionDeltas = map[Direction][2]int{
	North:     {-1, 0},
	NorthEast: {-1, 1},
	East:      {0, 1},
	SouthEast: {1, 1},
	South:     {1, 0},
	SouthWest: {1, -1},
	West:      {0, -1},
	NorthWest: {-1, -1},
}

var directionIndex = map[Direction]int{
	North: 0, NorthEast: 1, East: 2, SouthEast: 3,
	South: 4, SouthWest: 5, West: 6, NorthWest: 7,
}

// index returns the slot of d in a cell's neighbor table. Unknown keys panic.
func (d Direction) index() int {
	i, ok := directionIndex[d]
	if !ok {
		panic(fmt.Sprintf("engine: invalid direction %q", string(d)))
	}
	return i
}

// Delta returns the (row, col) unit step for d
func (d Direction) Delta() (int, int) {
	delta := directionDeltas[d]
	return delta[0], delta[1]
}

// Opposite returns the direction pointing the other way
func (d Direction) Opposite() Direction {
	return Directions[(d.index()+4)%len(Directions)]
}

// BoopResult describes a piece pushed by a placement. A nil Destination
// means the piece fell off the board.
type BoopResult struct {
	PieceType   PieceType   `json:"piece_type"`
	Player      Player      `json:"player"` // owner of the pushed piece
	Origin      Coordinate  `json:"origin"`
	Destination *Coordinate `json:"destination"`
}
