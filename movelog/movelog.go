// Package movelog renders recorded move histories as standard algebraic
// notation for display alongside a board.
package movelog

import (
	"fmt"
	"strings"

	chess "github.com/corentings/chess/v2"

	"github.com/walterschell/chess-board/chessboard"
)

// SANLine encodes a move sequence from the given FEN position into
// algebraic notation, one entry per move. An empty fen means the
// standard starting position.
func SANLine(fen string, moves []chessboard.Move) ([]string, error) {
	var pos *chess.Position
	if fen == "" {
		pos = chess.StartingPosition()
	} else {
		opt, err := chess.FEN(fen)
		if err != nil {
			return nil, fmt.Errorf("movelog: parsing FEN: %v", err)
		}
		pos = chess.NewGame(opt).Position()
	}

	san := make([]string, 0, len(moves))
	for i, m := range moves {
		decoded, err := chess.UCINotation{}.Decode(pos, m.String())
		if err != nil {
			return nil, fmt.Errorf("movelog: move %d (%v): %v", i+1, m, err)
		}
		san = append(san, chess.AlgebraicNotation{}.Encode(pos, decoded))
		next := pos.Update(decoded)
		if next == nil {
			return nil, fmt.Errorf("movelog: move %d (%v) is not legal", i+1, m)
		}
		pos = next
	}
	return san, nil
}

// Format renders a SAN line as numbered text, e.g. "1. e4 e5 2. Nf3".
// firstMover is the side that plays the first move of the line.
func Format(san []string, firstMover chessboard.Color) string {
	var b strings.Builder
	num := 1
	whiteToPlay := firstMover != chessboard.Black
	for i, s := range san {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch {
		case whiteToPlay:
			fmt.Fprintf(&b, "%d. %s", num, s)
		case i == 0:
			fmt.Fprintf(&b, "%d... %s", num, s)
		default:
			b.WriteString(s)
		}
		if !whiteToPlay {
			num++
		}
		whiteToPlay = !whiteToPlay
	}
	return b.String()
}
