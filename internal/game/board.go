package game

const BoardSize = 10

type CellState uint8

const (
	CellEmpty CellState = iota
	CellMiss
	CellHit
)

// Board is one participant's 10x10 grid. Cells record attack outcomes only;
// ship placement itself never reaches the server.
type Board [BoardSize][BoardSize]CellState

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) Valid() bool {
	return p.Row >= 0 && p.Row < BoardSize && p.Col >= 0 && p.Col < BoardSize
}

func (b *Board) mark(pos Position, hit bool) {
	if !pos.Valid() {
		return
	}
	if hit {
		b[pos.Row][pos.Col] = CellHit
		return
	}
	b[pos.Row][pos.Col] = CellMiss
}

func (b *Board) Cell(pos Position) CellState {
	if !pos.Valid() {
		return CellEmpty
	}
	return b[pos.Row][pos.Col]
}
