package spreadsheet

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/websocket"

	"ledger/broker"
	"ledger/engine"
	"ledger/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for local dev
	},
}

// Server hosts one Sheet over a websocket connection, pushing every
// recalculated cell to every connected browser client. If announcer/db are
// non-nil, every successful SetCell also publishes a broker.Event and
// persists the cell's raw text to Postgres.
type Server struct {
	Sheet   *Sheet
	clients map[*websocket.Conn]bool
	mu      sync.Mutex

	announcer *broker.Announcer
	db        *store.Store
}

// NewServer creates a Server over a fresh, empty sheet named name.
// announcer and db are optional (pass nil to skip fan-out/persistence).
func NewServer(name string, announcer *broker.Announcer, db *store.Store) *Server {
	return &Server{
		Sheet:     NewSheet(name),
		clients:   make(map[*websocket.Conn]bool),
		announcer: announcer,
		db:        db,
	}
}

// LoadFrom replays every stored cell for the sheet's name out of db,
// rebuilding the dependency graph and recomputing every Value.
func (s *Server) LoadFrom(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	cells, err := s.db.LoadSheet(ctx, s.Sheet.name)
	if err != nil {
		return err
	}
	for id, raw := range cells {
		if err := s.Sheet.SetCell(CellID(id), raw); err != nil {
			log.Printf("spreadsheet: replay %s!%s failed: %v", s.Sheet.name, id, err)
		}
	}
	return nil
}

func (s *Server) setCell(ctx context.Context, id CellID, rawValue string) error {
	if err := s.Sheet.SetCell(id, rawValue); err != nil {
		return err
	}
	if s.db != nil {
		if err := s.db.SaveCell(ctx, s.Sheet.name, string(id), rawValue); err != nil {
			log.Printf("spreadsheet: persist %s!%s failed: %v", s.Sheet.name, id, err)
		}
	}
	return nil
}

func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	s.sendInitialState(conn)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var req UpdateRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			log.Println("JSON error:", err)
			continue
		}

		switch req.Type {
		case "update_cell":
			s.handleUpdate(r.Context(), req)
		case "clear":
			s.Sheet.Clear()
			s.broadcastAll()
		}
	}
}

func (s *Server) broadcastAll() {
	resetMsg := UpdateResponse{Type: "reset"}

	s.mu.Lock()
	for client := range s.clients {
		if err := client.WriteJSON(resetMsg); err != nil {
			log.Printf("reset write failed: %v", err)
			_ = client.Close()
			delete(s.clients, client)
		}
	}
	s.mu.Unlock()

	s.Sheet.mu.RLock()
	cells := make([]*Cell, 0, len(s.Sheet.Cells))
	for _, cell := range s.Sheet.Cells {
		cells = append(cells, cell)
	}
	s.Sheet.mu.RUnlock()

	for _, cell := range cells {
		resp := createUpdateResponse(cell)
		s.mu.Lock()
		for client := range s.clients {
			if err := client.WriteJSON(resp); err != nil {
				log.Printf("broadcast write failed: %v", err)
				_ = client.Close()
				delete(s.clients, client)
			}
		}
		s.mu.Unlock()
	}
}

// UpdateRequest is a browser-originated websocket message.
type UpdateRequest struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Value string `json:"value"`
}

// UpdateResponse announces one cell's current raw text and display value.
type UpdateResponse struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Value   string `json:"value"`
	Display string `json:"display"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) sendInitialState(conn *websocket.Conn) {
	s.Sheet.mu.RLock()
	cells := make([]*Cell, 0, len(s.Sheet.Cells))
	for _, cell := range s.Sheet.Cells {
		cells = append(cells, cell)
	}
	s.Sheet.mu.RUnlock()

	for _, cell := range cells {
		resp := createUpdateResponse(cell)
		if err := conn.WriteJSON(resp); err != nil {
			log.Printf("initial state write failed: %v", err)
			return
		}
	}
}

func (s *Server) handleUpdate(ctx context.Context, req UpdateRequest) {
	id := CellID(req.ID)
	if err := s.setCell(ctx, id, req.Value); err != nil {
		log.Printf("Error setting cell %s: %v", id, err)
	}

	affected := make(map[CellID]bool)
	s.collectAffected(id, affected)
	s.broadcastUpdates(affected)
}

func (s *Server) collectAffected(id CellID, affected map[CellID]bool) {
	if affected[id] {
		return
	}
	affected[id] = true

	cell := s.Sheet.GetCell(id)
	s.Sheet.mu.RLock()
	dependents := make([]CellID, len(cell.Dependents))
	copy(dependents, cell.Dependents)
	s.Sheet.mu.RUnlock()

	for _, dep := range dependents {
		s.collectAffected(dep, affected)
	}
}

func (s *Server) broadcastUpdates(affected map[CellID]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range affected {
		cell := s.Sheet.GetCell(id)
		resp := createUpdateResponse(cell)

		if s.announcer != nil {
			event := broker.Event{Sheet: s.Sheet.name, Cell: string(id), Value: resp.Display}
			if resp.Error != "" {
				errCopy := resp.Error
				event.Error = &errCopy
			}
			s.announcer.Publish(event)
		}

		for client := range s.clients {
			if err := client.WriteJSON(resp); err != nil {
				log.Printf("update write failed: %v", err)
				_ = client.Close()
				delete(s.clients, client)
			}
		}
	}
}

func createUpdateResponse(cell *Cell) UpdateResponse {
	valStr := "empty"
	errStr := ""
	if cell.Value != nil {
		valStr = cell.Value.Inspect()
		if engine.IsError(cell.Value) {
			errStr = valStr
		}
	}

	return UpdateResponse{
		Type:    "cell_updated",
		ID:      string(cell.ID),
		Value:   cell.RawValue,
		Display: valStr,
		Error:   errStr,
	}
}

// Start starts the HTTP server on the given address, serving the static
// browser client from assets/spreadsheet and the websocket endpoint at /ws.
func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()

	dir := "assets/spreadsheet"
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		log.Printf("Warning: static directory %s not found", dir)
	} else {
		log.Printf("Serving static files from %s", dir)
	}

	fs := http.FileServer(http.Dir(dir))
	mux.Handle("/", fs)
	mux.HandleFunc("/ws", s.HandleWebSocket)

	log.Printf("Starting spreadsheet server at http://%s", addr)
	return http.ListenAndServe(addr, mux)
}
