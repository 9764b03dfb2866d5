// Command boardterm hosts the interactive board in a terminal using
// tcell. Click or drag with the mouse to move; arrow keys step through
// the game history.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/walterschell/chess-board/chessboard"
	"github.com/walterschell/chess-board/enginebot"
)

var log = slog.Default().With("package", "boardterm")

// Each board square occupies a cell block this big, so the board reads
// roughly square in a typical terminal font.
const (
	cellWidth  = 4
	cellHeight = 2
)

var pieceRunes = map[chessboard.Piece]rune{
	{Kind: chessboard.King, Color: chessboard.White}:   '♔',
	{Kind: chessboard.Queen, Color: chessboard.White}:  '♕',
	{Kind: chessboard.Rook, Color: chessboard.White}:   '♖',
	{Kind: chessboard.Bishop, Color: chessboard.White}: '♗',
	{Kind: chessboard.Knight, Color: chessboard.White}: '♘',
	{Kind: chessboard.Pawn, Color: chessboard.White}:   '♙',
	{Kind: chessboard.King, Color: chessboard.Black}:   '♚',
	{Kind: chessboard.Queen, Color: chessboard.Black}:  '♛',
	{Kind: chessboard.Rook, Color: chessboard.Black}:   '♜',
	{Kind: chessboard.Bishop, Color: chessboard.Black}: '♝',
	{Kind: chessboard.Knight, Color: chessboard.Black}: '♞',
	{Kind: chessboard.Pawn, Color: chessboard.Black}:   '♟',
}

// Theme holds the board palette.
type Theme struct {
	Light    tcell.Color
	Dark     tcell.Color
	Selected tcell.Color
	Target   tcell.Color
	LastMove tcell.Color
	Check    tcell.Color
}

var defaultTheme = Theme{
	Light:    tcell.NewRGBColor(240, 217, 181),
	Dark:     tcell.NewRGBColor(181, 136, 99),
	Selected: tcell.NewRGBColor(106, 154, 90),
	Target:   tcell.NewRGBColor(130, 170, 110),
	LastMove: tcell.NewRGBColor(205, 210, 106),
	Check:    tcell.NewRGBColor(220, 100, 100),
}

type app struct {
	screen   tcell.Screen
	widget   *chessboard.Widget
	replay   *chessboard.Replay
	theme    Theme
	bot      enginebot.Responder
	dragging bool
}

// cellToPoint maps a terminal cell to the widget's logical coordinate
// space, where every square is one unit.
func cellToPoint(cx, cy int) chessboard.Point {
	return chessboard.Point{
		X: (float64(cx) + 0.5) / cellWidth,
		Y: (float64(cy) + 0.5) / cellHeight,
	}
}

func (a *app) run() error {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go a.screen.ChannelEvents(events, quit)

	redraw := time.NewTicker(33 * time.Millisecond)
	defer redraw.Stop()

	a.draw()
	for {
		select {
		case <-redraw.C:
			a.draw()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				a.screen.Sync()
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyEscape || ev.Rune() == 'q':
					close(quit)
					return nil
				case ev.Key() == tcell.KeyLeft:
					a.replay.Prev()
				case ev.Key() == tcell.KeyRight:
					a.replay.Next()
				case ev.Rune() == 'f':
					a.widget.SetFlipped(!a.widget.Flipped())
				case ev.Rune() == 'n':
					a.widget.Reset()
					a.replay.Reset()
				}
				a.draw()
			case *tcell.EventMouse:
				cx, cy := ev.Position()
				p := cellToPoint(cx, cy)
				switch ev.Buttons() {
				case tcell.Button1:
					if !a.dragging {
						a.dragging = true
						a.widget.PointerDown(p)
					} else {
						a.widget.PointerMove(p)
					}
				case tcell.ButtonNone:
					if a.dragging {
						a.dragging = false
						a.widget.PointerUp(p)
					}
				}
				a.draw()
			}
		}
	}
}

func (a *app) draw() {
	s := a.screen
	s.Clear()
	f := a.widget.Frame()

	highlight := map[chessboard.Square]tcell.Color{}
	if f.LastFrom != chessboard.NoSquare {
		highlight[f.LastFrom] = a.theme.LastMove
		highlight[f.LastTo] = a.theme.LastMove
	}
	for _, sq := range f.LegalTargets {
		highlight[sq] = a.theme.Target
	}
	if f.CheckSquare != chessboard.NoSquare {
		highlight[f.CheckSquare] = a.theme.Check
	}
	if f.Selected != chessboard.NoSquare {
		highlight[f.Selected] = a.theme.Selected
	}
	if f.Hover != chessboard.NoSquare {
		highlight[f.Hover] = a.theme.Selected
	}

	pieces := map[chessboard.Square]chessboard.Piece{}
	faded := map[chessboard.Square]bool{}
	for _, fp := range f.Pieces {
		pieces[fp.Square] = fp.Piece
		faded[fp.Square] = fp.Faded
	}
	// The terminal cannot float pieces between cells: overlays snap to
	// the square whose unit cell their position falls in.
	layout := a.widget.Layout()
	for _, o := range f.Animating {
		if sq := layout.SquareAt(o.Pos); sq != chessboard.NoSquare {
			pieces[sq] = o.Piece
		}
	}
	if f.Drag != nil {
		if sq := layout.SquareAt(f.Drag.Pos); sq != chessboard.NoSquare {
			pieces[sq] = f.Drag.Piece
		}
	}

	for sq := chessboard.Square(0); sq < 64; sq++ {
		var col, row int
		if f.Flipped {
			col, row = 7-sq.File(), sq.Rank()
		} else {
			col, row = sq.File(), 7-sq.Rank()
		}
		bg := a.theme.Light
		if (sq.File()+sq.Rank())%2 == 0 {
			bg = a.theme.Dark
		}
		if c, ok := highlight[sq]; ok {
			bg = c
		}
		style := tcell.StyleDefault.Background(bg).Foreground(tcell.ColorBlack)
		if faded[sq] {
			style = style.Dim(true)
		}
		for dx := 0; dx < cellWidth; dx++ {
			for dy := 0; dy < cellHeight; dy++ {
				s.SetContent(col*cellWidth+dx, row*cellHeight+dy, ' ', nil, style)
			}
		}
		if p, ok := pieces[sq]; ok {
			s.SetContent(col*cellWidth+cellWidth/2-1, row*cellHeight+cellHeight/2, pieceRunes[p], nil, style)
		}
	}

	statusRow := 8 * cellHeight
	turn := a.widget.Model().SideToMove()
	msg := fmt.Sprintf("%s to move   arrows: history  f: flip  n: new  q: quit", turn)
	for i, r := range msg {
		s.SetContent(i, statusRow, r, nil, tcell.StyleDefault)
	}
	s.Show()
}

func main() {
	var vsBot bool
	var startFEN string
	flag.BoolVar(&vsBot, "bot", false, "Play against a random opponent")
	flag.StringVar(&startFEN, "fen", "", "Starting position in FEN")
	flag.Parse()

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Error("creating screen", "error", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		log.Error("initializing screen", "error", err)
		os.Exit(1)
	}
	screen.EnableMouse()
	defer screen.Fini()

	// One logical unit per square keeps the geometry independent of the
	// terminal cell aspect ratio.
	widget := chessboard.NewWidget(
		chessboard.WithSize(8, 8),
		chessboard.WithAnimation(40*time.Millisecond, 0.1),
	)
	if startFEN != "" {
		if err := widget.SetPositionFEN(startFEN); err != nil {
			screen.Fini()
			log.Error("bad FEN", "error", err)
			os.Exit(1)
		}
	}
	a := &app{
		screen: screen,
		widget: widget,
		replay: chessboard.NewReplay(widget),
		theme:  defaultTheme,
	}
	if vsBot {
		a.bot = enginebot.NewRandomResponder(nil)
		widget.OnMovePlayed(func(_ chessboard.Move, info chessboard.MoveInfo) {
			if info.Interactive {
				go func() {
					time.Sleep(200 * time.Millisecond)
					if m, err := a.bot.Respond(widget.Model()); err == nil {
						widget.PlayMove(m, true)
					}
				}()
			}
		})
	}

	if err := a.run(); err != nil {
		log.Error("running", "error", err)
	}
}
