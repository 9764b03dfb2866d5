package enginebot

import (
	"fmt"
	"math/rand"

	"github.com/walterschell/chess-board/chessboard"
)

// Responder picks a reply move for the given model, typically called
// after a human move to drive the opposing side.
type Responder interface {
	Respond(model chessboard.Model) (chessboard.Move, error)
}

// RandomResponder plays a uniformly random legal move.
type RandomResponder struct {
	rng *rand.Rand
}

// NewRandomResponder returns a random mover. A nil source uses the
// shared global generator.
func NewRandomResponder(rng *rand.Rand) *RandomResponder {
	return &RandomResponder{rng: rng}
}

func (r *RandomResponder) Respond(model chessboard.Model) (chessboard.Move, error) {
	moves := model.LegalMoves()
	if len(moves) == 0 {
		return chessboard.Move{}, fmt.Errorf("no legal moves in position %s", model.FEN())
	}
	if r.rng != nil {
		return moves[r.rng.Intn(len(moves))], nil
	}
	return moves[rand.Intn(len(moves))], nil
}

// EngineResponder plays the move a UCI engine recommends.
type EngineResponder struct {
	engine *UCIEngine
}

func NewEngineResponder(engine *UCIEngine) *EngineResponder {
	return &EngineResponder{engine: engine}
}

func (r *EngineResponder) Respond(model chessboard.Model) (chessboard.Move, error) {
	return r.engine.BestMove(model.FEN())
}
