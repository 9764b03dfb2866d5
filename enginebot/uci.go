// Package enginebot provides opponents for an interactive board: a
// random mover and a UCI engine wrapper that asks an external process
// such as Stockfish for its best move.
package enginebot

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/walterschell/chess-board/chessboard"
)

var log = slog.Default().With("package", "enginebot")

// UCIEngine wraps a UCI chess engine subprocess. Commands are written
// to its stdin; a reader goroutine fans responses into a channel.
type UCIEngine struct {
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Scanner
	ready     bool
	mutex     sync.Mutex
	responses chan string
	moveTime  time.Duration
}

type engineOptions struct {
	binary   string
	hashMB   int
	threads  int
	moveTime time.Duration
}

// EngineOption configures a UCIEngine at construction.
type EngineOption func(*engineOptions)

// WithBinary overrides the engine executable (default "stockfish").
func WithBinary(path string) EngineOption {
	return func(o *engineOptions) { o.binary = path }
}

// WithHash sets the engine hash table size in megabytes.
func WithHash(mb int) EngineOption {
	return func(o *engineOptions) { o.hashMB = mb }
}

// WithThreads sets the engine search thread count.
func WithThreads(n int) EngineOption {
	return func(o *engineOptions) { o.threads = n }
}

// WithMoveTime sets the per-move search time.
func WithMoveTime(d time.Duration) EngineOption {
	return func(o *engineOptions) { o.moveTime = d }
}

// NewUCIEngine starts and initializes a UCI engine subprocess.
func NewUCIEngine(opts ...EngineOption) (*UCIEngine, error) {
	options := engineOptions{
		binary:   "stockfish",
		hashMB:   128,
		threads:  2,
		moveTime: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&options)
	}

	cmd := exec.Command(options.binary)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %v", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %v", err)
	}

	engine := &UCIEngine{
		cmd:       cmd,
		stdin:     stdin,
		stdout:    bufio.NewScanner(stdout),
		responses: make(chan string, 100),
	}
	engine.moveTime = options.moveTime

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %v", options.binary, err)
	}

	go engine.readOutput()
	if err := engine.initialize(options); err != nil {
		engine.Close()
		return nil, err
	}
	return engine, nil
}

func (e *UCIEngine) initialize(options engineOptions) error {
	e.sendCommand("uci")
	e.sendCommand(fmt.Sprintf("setoption name Hash value %d", options.hashMB))
	e.sendCommand(fmt.Sprintf("setoption name Threads value %d", options.threads))
	e.sendCommand("setoption name Ponder value false")
	e.sendCommand("isready")

	for response := range e.responses {
		if strings.Contains(response, "readyok") {
			e.ready = true
			return nil
		}
	}
	return fmt.Errorf("engine initialization failed")
}

func (e *UCIEngine) sendCommand(cmd string) error {
	log.Debug("sending command", "command", cmd)
	e.mutex.Lock()
	defer e.mutex.Unlock()
	_, err := fmt.Fprintln(e.stdin, cmd)
	return err
}

func (e *UCIEngine) readOutput() {
	for e.stdout.Scan() {
		response := e.stdout.Text()
		log.Debug("received response", "response", response)
		e.responses <- response
	}
	close(e.responses)
}

// BestMove asks the engine for its best move in the given FEN position.
func (e *UCIEngine) BestMove(fen string) (chessboard.Move, error) {
	if !e.ready {
		return chessboard.Move{}, fmt.Errorf("engine not ready")
	}
	e.sendCommand(fmt.Sprintf("position fen %s", fen))
	e.sendCommand(fmt.Sprintf("go movetime %d", e.moveTime.Milliseconds()))

	for response := range e.responses {
		if strings.HasPrefix(response, "bestmove") {
			parts := strings.Fields(response)
			if len(parts) < 2 || parts[1] == "(none)" {
				return chessboard.Move{}, fmt.Errorf("no move in position %s", fen)
			}
			return chessboard.ParseMove(parts[1])
		}
	}
	return chessboard.Move{}, fmt.Errorf("engine closed before bestmove")
}

// Close shuts down the engine subprocess.
func (e *UCIEngine) Close() error {
	e.sendCommand("quit")
	return e.cmd.Wait()
}
