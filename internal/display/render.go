package display

import (
	"strings"
	"time"

	"github.com/tinytelemetry/cards/internal/model"
)

// Pixel size of one terminal cell.
const (
	CellWidth  = 4
	CellHeight = 8
)

// Cell is one character of the rasterised screen.
type Cell struct {
	Ch     rune
	Paper  bool // white background under the glyph
	Bold   bool
	Invert bool
	Alert  bool
}

// Lit reports whether the cell is drawn dark-on-light.
func (c Cell) Lit() bool { return c.Paper != c.Invert }

// Raster is a rasterised frame, indexed [row][col].
type Raster [][]Cell

// Cols and Rows of a full-screen raster.
func rasterSize() (cols, rows int) {
	return model.ScreenWidth / CellWidth, model.ScreenHeight / CellHeight
}

// Render composites the layer tree and overlays as they look at now.
func (c *Canvas) Render() Raster {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	cols, rows := rasterSize()
	r := make(Raster, rows)
	for y := range r {
		r[y] = make([]Cell, cols)
		for x := range r[y] {
			r[y][x] = Cell{Ch: ' '}
		}
	}

	c.drawLayer(r, c.root, 0, 0, now)
	if a := c.activeAlertLocked(now); a != nil {
		drawAlert(r, a)
	}
	return r
}

func (c *Canvas) drawLayer(r Raster, l *Layer, ox, oy int, now time.Time) {
	f := c.frameLocked(l, now).Offset(ox, oy)
	switch l.kind {
	case KindBitmap:
		drawBitmap(r, f, l.bitmap)
	case KindText:
		drawText(r, f, l.text.String(), l.style)
	case KindInverter:
		eachCell(r, f, func(cell *Cell) { cell.Invert = !cell.Invert })
	}
	for _, child := range l.children {
		c.drawLayer(r, child, f.X, f.Y, now)
	}
}

// cellRect converts a pixel rectangle into the covered cell range.
func cellRect(f model.Rect) (x0, y0, x1, y1 int) {
	return floorDiv(f.X, CellWidth), floorDiv(f.Y, CellHeight),
		floorDiv(f.X+f.W, CellWidth), floorDiv(f.Y+f.H, CellHeight)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func (r Raster) at(x, y int) *Cell {
	if y < 0 || y >= len(r) || x < 0 || x >= len(r[y]) {
		return nil
	}
	return &r[y][x]
}

func eachCell(r Raster, f model.Rect, fn func(*Cell)) {
	x0, y0, x1, y1 := cellRect(f)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if cell := r.at(x, y); cell != nil {
				fn(cell)
			}
		}
	}
}

func drawBitmap(r Raster, f model.Rect, bmp Bitmap) {
	if bmp.Fill {
		eachCell(r, f, func(cell *Cell) {
			cell.Paper = true
			cell.Ch = ' '
		})
	}
	x0, y0, x1, y1 := cellRect(f)
	for dy, row := range bmp.Rows {
		y := y0 + dy
		if y >= y1 {
			break
		}
		x := x0
		for _, ch := range row {
			if x >= x1 {
				break
			}
			if ch != ' ' {
				if cell := r.at(x, y); cell != nil {
					cell.Ch = ch
				}
			}
			x++
		}
	}
}

func drawText(r Raster, f model.Rect, s string, style TextStyle) {
	x0, y0, x1, _ := cellRect(f)
	width := x1 - x0
	if width <= 0 {
		return
	}
	runes := []rune(s)
	if len(runes) > width {
		runes = runes[:width]
	}
	start := x0
	switch style.Align {
	case AlignCenter:
		start = x0 + (width-len(runes))/2
	case AlignRight:
		start = x1 - len(runes)
	}
	for i, ch := range runes {
		if cell := r.at(start+i, y0); cell != nil {
			cell.Ch = ch
			cell.Bold = style.Bold
		}
	}
}

func drawAlert(r Raster, a *alert) {
	cols, rows := rasterSize()
	width := cols - 4
	top := rows/2 - 3
	box := model.Rect{X: 2 * CellWidth, Y: top * CellHeight, W: width * CellWidth, H: 6 * CellHeight}
	eachCell(r, box, func(cell *Cell) {
		*cell = Cell{Ch: ' ', Paper: true, Alert: true}
	})
	line := func(y int, s string, bold bool) {
		drawText(r, model.Rect{X: 3 * CellWidth, Y: y * CellHeight, W: (width - 2) * CellWidth, H: CellHeight},
			s, TextStyle{Align: AlignCenter, Bold: bold})
	}
	line(top+1, a.title, true)
	for i, l := range wrap(a.body, width-2) {
		if i >= 3 {
			break
		}
		line(top+2+i, l, false)
	}
}

func wrap(s string, width int) []string {
	var lines []string
	var cur strings.Builder
	for _, word := range strings.Fields(s) {
		if cur.Len() > 0 && cur.Len()+1+len(word) > width {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// String renders the raster as plain text, one line per row.
func (r Raster) String() string {
	var b strings.Builder
	for y, row := range r {
		if y > 0 {
			b.WriteByte('\n')
		}
		for _, cell := range row {
			b.WriteRune(cell.Ch)
		}
	}
	return b.String()
}
