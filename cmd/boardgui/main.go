// Command boardgui hosts the interactive board in an ebiten window.
// Animation is stepped from the game's own frame loop through a
// ManualTicker, one tick per frame.
package main

import (
	"flag"
	"image/color"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/walterschell/chess-board/chessboard"
	"github.com/walterschell/chess-board/enginebot"
)

var log = slog.Default().With("package", "boardgui")

const windowSize = 640

var (
	lightSquare = color.RGBA{R: 240, G: 217, B: 181, A: 255}
	darkSquare  = color.RGBA{R: 181, G: 136, B: 99, A: 255}
	selectTint  = color.RGBA{R: 20, G: 85, B: 30, A: 128}
	targetTint  = color.RGBA{R: 20, G: 85, B: 30, A: 90}
	lastTint    = color.RGBA{R: 155, G: 199, B: 0, A: 105}
	checkTint   = color.RGBA{R: 232, G: 18, B: 18, A: 140}
	whitePiece  = color.RGBA{R: 250, G: 250, B: 250, A: 255}
	blackPiece  = color.RGBA{R: 30, G: 30, B: 30, A: 255}
)

var pieceLetters = map[chessboard.PieceKind]string{
	chessboard.Pawn:   "P",
	chessboard.Knight: "N",
	chessboard.Bishop: "B",
	chessboard.Rook:   "R",
	chessboard.Queen:  "Q",
	chessboard.King:   "K",
}

type game struct {
	widget *chessboard.Widget
	replay *chessboard.Replay
	ticker *chessboard.ManualTicker
	bot    enginebot.Responder
}

func (g *game) Update() error {
	x, y := ebiten.CursorPosition()
	p := chessboard.Point{X: float64(x), Y: float64(y)}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.widget.PointerDown(p)
	} else if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.widget.PointerUp(p)
	} else if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.widget.PointerMove(p)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		g.replay.Prev()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		g.replay.Next()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		g.widget.SetFlipped(!g.widget.Flipped())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.widget.Reset()
		g.replay.Reset()
	}

	if g.bot != nil && !g.widget.Animating() {
		if g.widget.Model().SideToMove() == chessboard.Black {
			if m, err := g.bot.Respond(g.widget.Model()); err == nil {
				if err := g.widget.PlayMove(m, true); err != nil {
					log.Warn("bot move rejected", "move", m.String(), "error", err)
				}
			}
		}
	}

	g.ticker.Tick()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	f := g.widget.Frame()
	s := float32(f.SquareSize)

	fillSquare := func(sq chessboard.Square, clr color.Color) {
		o := g.widget.Layout().SquareOrigin(sq)
		vector.DrawFilledRect(screen, float32(o.X), float32(o.Y), s, s, clr, false)
	}

	for sq := chessboard.Square(0); sq < 64; sq++ {
		if (sq.File()+sq.Rank())%2 == 1 {
			fillSquare(sq, lightSquare)
		} else {
			fillSquare(sq, darkSquare)
		}
	}
	if f.LastFrom != chessboard.NoSquare {
		fillSquare(f.LastFrom, lastTint)
		fillSquare(f.LastTo, lastTint)
	}
	if f.CheckSquare != chessboard.NoSquare {
		fillSquare(f.CheckSquare, checkTint)
	}
	if f.Selected != chessboard.NoSquare {
		fillSquare(f.Selected, selectTint)
	}
	if f.Hover != chessboard.NoSquare {
		fillSquare(f.Hover, selectTint)
	}
	layout := g.widget.Layout()
	for _, sq := range f.LegalTargets {
		c := layout.SquareCenter(sq)
		vector.DrawFilledCircle(screen, float32(c.X), float32(c.Y), s/6, targetTint, true)
	}

	drawPiece := func(p chessboard.Piece, x, y float64, faded bool) {
		clr := whitePiece
		if p.Color == chessboard.Black {
			clr = blackPiece
		}
		if faded {
			clr = color.RGBA{R: clr.R / 2, G: clr.G / 2, B: clr.B / 2, A: 128}
		}
		r := s * 0.36
		vector.DrawFilledCircle(screen, float32(x), float32(y), r, clr, true)
		ebitenutil.DebugPrintAt(screen, pieceLetters[p.Kind], int(x)-3, int(y)-8)
	}

	for _, fp := range f.Pieces {
		c := layout.SquareCenter(fp.Square)
		drawPiece(fp.Piece, c.X, c.Y, fp.Faded)
	}
	for _, o := range f.Animating {
		drawPiece(o.Piece, o.Pos.X, o.Pos.Y, false)
	}
	if f.Drag != nil {
		drawPiece(f.Drag.Piece, f.Drag.Pos.X, f.Drag.Pos.Y, false)
	}

	ebitenutil.DebugPrintAt(screen, g.widget.Model().SideToMove().String()+" to move", 4, windowSize-16)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return windowSize, windowSize
}

func main() {
	var vsBot bool
	var startFEN string
	flag.BoolVar(&vsBot, "bot", false, "Play black with a random opponent")
	flag.StringVar(&startFEN, "fen", "", "Starting position in FEN")
	flag.Parse()

	ticker := &chessboard.ManualTicker{}
	widget := chessboard.NewWidget(
		chessboard.WithSize(windowSize, windowSize),
		chessboard.WithTicker(ticker),
	)
	if startFEN != "" {
		if err := widget.SetPositionFEN(startFEN); err != nil {
			log.Error("bad FEN", "error", err)
			os.Exit(1)
		}
	}
	g := &game{
		widget: widget,
		replay: chessboard.NewReplay(widget),
		ticker: ticker,
	}
	if vsBot {
		g.bot = enginebot.NewRandomResponder(nil)
	}

	ebiten.SetWindowSize(windowSize, windowSize)
	ebiten.SetWindowTitle("Chess Board")
	if err := ebiten.RunGame(g); err != nil {
		log.Error("running", "error", err)
		os.Exit(1)
	}
}
