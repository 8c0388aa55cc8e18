package main

// Coordinate mapping between grid cells and world pixels. The grid is
// row-major with (0,0) at the top left; pixel positions refer to cell
// centers so sprites scale about their own middle.

func cellCenter(x, y, tilePx int) vec2 {
	return vec2{
		X: float64(x*tilePx) + float64(tilePx)/2,
		Y: float64(y*tilePx) + float64(tilePx)/2,
	}
}

func cellOrigin(x, y, tilePx int) vec2 {
	return vec2{X: float64(x * tilePx), Y: float64(y * tilePx)}
}

// cellAt maps a world pixel position back to the containing cell. Positions
// outside the grid clamp to the nearest edge cell.
func cellAt(p vec2, tilePx, gridW, gridH int) (int, int) {
	x := int(p.X) / tilePx
	y := int(p.Y) / tilePx
	if x < 0 {
		x = 0
	}
	if x >= gridW {
		x = gridW - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= gridH {
		y = gridH - 1
	}
	return x, y
}

func cellIndex(x, y, gridW int) int {
	return y*gridW + x
}

func inGrid(x, y, gridW, gridH int) bool {
	return x >= 0 && x < gridW && y >= 0 && y < gridH
}

// cellDistance is the straight-line distance between two cells in cell units.
func cellDistance(x0, y0, x1, y1 int) float64 {
	dx := float64(x1 - x0)
	dy := float64(y1 - y0)
	return vec2{dx, dy}.len()
}

// Direction is a movement or facing on the grid.
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	}
	return "none"
}

func parseDirection(s string) Direction {
	switch s {
	case "up":
		return DirUp
	case "down":
		return DirDown
	case "left":
		return DirLeft
	case "right":
		return DirRight
	}
	return DirNone
}
