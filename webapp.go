package main

import (
	"embed"
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/walterschell/chess-board/chessboard"
	"github.com/walterschell/chess-board/enginebot"
	"github.com/walterschell/chess-board/movelog"
)

const DefaultPort = 8080

var log = slog.Default().With("package", "main")

//go:embed assets
var assets embed.FS
var static fs.FS
var templates fs.FS

func init() {
	static, _ = fs.Sub(assets, "assets/static")
	templates, _ = fs.Sub(assets, "assets/templates")
}

func stdoutLogger(next http.Handler) http.Handler {
	return handlers.LoggingHandler(os.Stdout, next)
}

// clientEvent is one message from the browser: a pointer event, a
// control action, or a resize.
type clientEvent struct {
	Type string  `json:"type"`
	X    float64 `json:"x,omitempty"`
	Y    float64 `json:"y,omitempty"`
	W    float64 `json:"w,omitempty"`
	H    float64 `json:"h,omitempty"`
	FEN  string  `json:"fen,omitempty"`
	Bot  string  `json:"bot,omitempty"`
}

type pieceDTO struct {
	Square string `json:"square"`
	Kind   string `json:"kind"`
	Color  string `json:"color"`
	Faded  bool   `json:"faded,omitempty"`
}

type overlayDTO struct {
	Kind  string  `json:"kind"`
	Color string  `json:"color"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// frameDTO is the wire form of a chessboard.Frame plus game status.
type frameDTO struct {
	Type         string       `json:"type"`
	BoardX       float64      `json:"boardX"`
	BoardY       float64      `json:"boardY"`
	BoardSize    float64      `json:"boardSize"`
	SquareSize   float64      `json:"squareSize"`
	Flipped      bool         `json:"flipped"`
	Pieces       []pieceDTO   `json:"pieces"`
	Selected     string       `json:"selected,omitempty"`
	Hover        string       `json:"hover,omitempty"`
	LegalTargets []string     `json:"legalTargets,omitempty"`
	LastFrom     string       `json:"lastFrom,omitempty"`
	LastTo       string       `json:"lastTo,omitempty"`
	CheckSquare  string       `json:"checkSquare,omitempty"`
	Drag         *overlayDTO  `json:"drag,omitempty"`
	Animating    []overlayDTO `json:"animating,omitempty"`
	FEN          string       `json:"fen"`
	SideToMove   string       `json:"sideToMove"`
	MoveText     string       `json:"moveText,omitempty"`
}

func squareName(sq chessboard.Square) string {
	if !sq.Valid() {
		return ""
	}
	return sq.String()
}

func toFrameDTO(f chessboard.Frame, fen string, turn chessboard.Color) frameDTO {
	dto := frameDTO{
		Type:        "frame",
		BoardX:      f.Board.X,
		BoardY:      f.Board.Y,
		BoardSize:   f.Board.W,
		SquareSize:  f.SquareSize,
		Flipped:     f.Flipped,
		Selected:    squareName(f.Selected),
		Hover:       squareName(f.Hover),
		LastFrom:    squareName(f.LastFrom),
		LastTo:      squareName(f.LastTo),
		CheckSquare: squareName(f.CheckSquare),
		FEN:         fen,
		SideToMove:  turn.String(),
	}
	for _, p := range f.Pieces {
		dto.Pieces = append(dto.Pieces, pieceDTO{
			Square: p.Square.String(),
			Kind:   p.Piece.Kind.String(),
			Color:  p.Piece.Color.String(),
			Faded:  p.Faded,
		})
	}
	for _, sq := range f.LegalTargets {
		dto.LegalTargets = append(dto.LegalTargets, sq.String())
	}
	if f.Drag != nil {
		dto.Drag = &overlayDTO{
			Kind:  f.Drag.Piece.Kind.String(),
			Color: f.Drag.Piece.Color.String(),
			X:     f.Drag.Pos.X,
			Y:     f.Drag.Pos.Y,
		}
	}
	for _, o := range f.Animating {
		dto.Animating = append(dto.Animating, overlayDTO{
			Kind:  o.Piece.Kind.String(),
			Color: o.Piece.Color.String(),
			X:     o.Pos.X,
			Y:     o.Pos.Y,
		})
	}
	return dto
}

// Client is one browser session: its own board, replay navigator and
// optional opponent.
type Client struct {
	id          uuid.UUID
	conn        *websocket.Conn
	writeLock   sync.Mutex
	application *Application
	widget      *chessboard.Widget
	replay      *chessboard.Replay
	responder   enginebot.Responder
	startFEN    string
	firstMover  chessboard.Color
}

type Application struct {
	router      *mux.Router
	templates   *template.Template
	clients     map[*Client]interface{}
	clientsLock sync.RWMutex
	upgrader    websocket.Upgrader
}

func NewApplication() *Application {
	templateParser := template.New("")
	templateParser.Delims("[[", "]]")
	result := Application{
		router:    mux.NewRouter(),
		templates: template.Must(templateParser.ParseFS(templates, "*.html.gotmpl")),
		clients:   make(map[*Client]interface{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	result.router.NotFoundHandler = stdoutLogger(http.HandlerFunc(notFoundHandler))
	result.router.Use(stdoutLogger)

	result.router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	result.router.HandleFunc("/", result.indexHandler)
	result.router.HandleFunc("/ws", result.wsHandler)
	return &result
}

func (app *Application) indexHandler(w http.ResponseWriter, r *http.Request) {
	templateVars := struct {
		Title string
	}{
		Title: "Chess Board",
	}

	err := app.templates.ExecuteTemplate(w, "index.html.gotmpl", templateVars)
	if err != nil {
		log.Error("rendering template", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (application *Application) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := application.upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	widget := chessboard.NewWidget(chessboard.WithSize(480, 480))
	client := &Client{
		id:          uuid.New(),
		conn:        conn,
		application: application,
		widget:      widget,
		replay:      chessboard.NewReplay(widget),
		firstMover:  chessboard.White,
	}
	log.Info("new websocket connection", "client", client.id, "remote", conn.RemoteAddr())

	// Push a frame after every completed move and on every animation
	// settle so browsers see the final piece placement.
	widget.OnMovePlayed(func(m chessboard.Move, info chessboard.MoveInfo) {
		log.Info("move played", "client", client.id, "move", m.String(), "interactive", info.Interactive)
		client.sendFrame()
		if info.Interactive && client.responder != nil {
			go client.respond()
		}
	})
	widget.OnMoveUndone(func(m chessboard.Move) {
		log.Info("move undone", "client", client.id, "move", m.String())
		client.sendFrame()
	})
	widget.OnAnimationFinished(func() {
		client.sendFrame()
	})

	application.clientsLock.Lock()
	application.clients[client] = nil
	application.clientsLock.Unlock()

	go client.pushFrames()
	go client.readLoop()
}

// respond plays the opponent's reply after a short pause, animated.
func (c *Client) respond() {
	time.Sleep(150 * time.Millisecond)
	m, err := c.responder.Respond(c.widget.Model())
	if err != nil {
		log.Warn("responder has no move", "client", c.id, "error", err)
		return
	}
	if err := c.widget.PlayMove(m, true); err != nil {
		log.Error("responder move rejected", "client", c.id, "move", m.String(), "error", err)
	}
}

// pushFrames streams frames while an animation or drag is in flight.
func (c *Client) pushFrames() {
	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		if !c.alive() {
			return
		}
		f := c.widget.Frame()
		if len(f.Animating) > 0 || f.Drag != nil {
			if err := c.send(toFrameDTO(f, c.widget.FEN(), c.widget.Model().SideToMove())); err != nil {
				return
			}
		}
	}
}

func (c *Client) alive() bool {
	c.application.clientsLock.RLock()
	defer c.application.clientsLock.RUnlock()
	_, ok := c.application.clients[c]
	return ok
}

func (c *Client) readLoop() {
	defer func() {
		c.application.clientsLock.Lock()
		delete(c.application.clients, c)
		c.application.clientsLock.Unlock()
		c.conn.Close()
	}()

	c.sendFrame()
	for {
		_, messageJson, err := c.conn.ReadMessage()
		if err != nil {
			log.Info("websocket closed", "client", c.id, "error", err)
			return
		}
		var event clientEvent
		if err := json.Unmarshal(messageJson, &event); err != nil {
			log.Warn("bad event", "client", c.id, "error", err)
			continue
		}
		c.handle(event)
	}
}

func (c *Client) handle(event clientEvent) {
	switch event.Type {
	case "down":
		c.widget.PointerDown(chessboard.Point{X: event.X, Y: event.Y})
		c.sendFrame()
	case "move":
		c.widget.PointerMove(chessboard.Point{X: event.X, Y: event.Y})
	case "up":
		c.widget.PointerUp(chessboard.Point{X: event.X, Y: event.Y})
		c.sendFrame()
	case "resize":
		c.widget.SetSize(event.W, event.H)
		c.sendFrame()
	case "flip":
		c.widget.SetFlipped(!c.widget.Flipped())
		c.sendFrame()
	case "undo":
		c.replay.Prev()
		c.sendFrame()
	case "redo":
		c.replay.Next()
		c.sendFrame()
	case "new":
		if event.FEN != "" {
			if err := c.widget.SetPositionFEN(event.FEN); err != nil {
				log.Warn("bad FEN", "client", c.id, "error", err)
			} else {
				c.startFEN = event.FEN
			}
		} else {
			c.widget.Reset()
			c.startFEN = ""
		}
		c.firstMover = c.widget.Model().SideToMove()
		c.responder = newResponder(event.Bot)
		c.replay.Reset()
		c.sendFrame()
	default:
		log.Warn("unknown event", "client", c.id, "type", event.Type)
	}
}

func newResponder(kind string) enginebot.Responder {
	switch kind {
	case "random":
		return enginebot.NewRandomResponder(nil)
	case "engine":
		engine, err := enginebot.NewUCIEngine()
		if err != nil {
			log.Warn("engine unavailable, falling back to random", "error", err)
			return enginebot.NewRandomResponder(nil)
		}
		return enginebot.NewEngineResponder(engine)
	}
	return nil
}

func (c *Client) sendFrame() {
	f := c.widget.Frame()
	dto := toFrameDTO(f, c.widget.FEN(), c.widget.Model().SideToMove())
	if san, err := movelog.SANLine(c.startFEN, c.replay.History()[:c.replay.Index()]); err == nil {
		dto.MoveText = movelog.Format(san, c.firstMover)
	}
	if err := c.send(dto); err != nil {
		log.Info("dropping client", "client", c.id, "error", err)
	}
}

func (c *Client) send(v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (app *Application) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	app.router.ServeHTTP(w, r)
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "File Not Found", http.StatusNotFound)
}

func main() {
	var port uint
	flag.UintVar(&port, "port", DefaultPort, "Port to listen on")
	flag.Parse()
	if port == 0 || port > 65535 {
		fmt.Println("Invalid port number")
		os.Exit(1)
	}
	log.Info("starting server", "port", port)
	app := NewApplication()
	http.ListenAndServe(fmt.Sprintf(":%d", port), app)
}
