package realtime

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/esports-arena/tournament-hub/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Event types pushed to tournament rooms.
const (
	EventTournamentArchived       = "TOURNAMENT_ARCHIVED"
	EventRoomCredentialsUpdated   = "ROOM_CREDENTIALS_UPDATED"
	EventRegistrationCountChanged = "REGISTRATION_COUNT_CHANGED"
)

type WebSocketMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	Room     string
	isClosed bool
	mu       sync.Mutex
}

// Hub tracks websocket clients grouped into per-tournament rooms and fans
// out event messages to them.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			h.logger.Debug("websocket client registered", "room", client.Room, "room_clients", len(h.rooms[client.Room]))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if roomClients, ok := h.rooms[client.Room]; ok {
				if _, okClient := roomClients[client]; okClient {
					client.mu.Lock()
					if !client.isClosed {
						close(client.Send)
						client.isClosed = true
					}
					client.mu.Unlock()
					delete(roomClients, client)
					if len(roomClients) == 0 {
						delete(h.rooms, client.Room)
					}
					h.logger.Debug("websocket client unregistered", "room", client.Room)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToRoom sends a message to every client in the given room.
// Clients with a full send buffer are skipped.
func (h *Hub) BroadcastToRoom(roomID string, message WebSocketMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	roomClients, ok := h.rooms[roomID]
	if !ok {
		return
	}

	message.RoomID = roomID
	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal websocket message", "room", roomID, "error", err)
		return
	}

	for client := range roomClients {
		client.mu.Lock()
		if client.isClosed {
			client.mu.Unlock()
			continue
		}
		select {
		case client.Send <- messageBytes:
		default:
			h.logger.Warn("websocket client send buffer full, dropping message", "room", roomID)
		}
		client.mu.Unlock()
	}
}

// TournamentArchived implements services.TournamentNotifier.
func (h *Hub) TournamentArchived(tournamentID int, archivedAt time.Time) {
	h.BroadcastToRoom(RoomForTournament(tournamentID), WebSocketMessage{
		Type: EventTournamentArchived,
		Payload: map[string]interface{}{
			"tournament_id": tournamentID,
			"status":        models.StatusCompleted,
			"archived_at":   archivedAt,
		},
	})
}

// RoomCredentialsUpdated implements services.TournamentNotifier.
func (h *Hub) RoomCredentialsUpdated(tournamentID int, room models.RoomCredentials) {
	h.BroadcastToRoom(RoomForTournament(tournamentID), WebSocketMessage{
		Type: EventRoomCredentialsUpdated,
		Payload: map[string]interface{}{
			"tournament_id": tournamentID,
			"room_id":       room.RoomID,
			"password":      room.Password,
			"available":     room.Available,
		},
	})
}

// RegistrationCountChanged implements services.RegistrationNotifier.
func (h *Hub) RegistrationCountChanged(tournamentID, registeredTeams int) {
	h.BroadcastToRoom(RoomForTournament(tournamentID), WebSocketMessage{
		Type: EventRegistrationCountChanged,
		Payload: map[string]interface{}{
			"tournament_id":    tournamentID,
			"registered_teams": registeredTeams,
		},
	})
}

// RoomForTournament returns the hub room name for a tournament id.
func RoomForTournament(tournamentID int) string {
	return "tournament_" + strconv.Itoa(tournamentID)
}

func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
		c.mu.Lock()
		c.isClosed = true
		c.mu.Unlock()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		// Incoming client messages are ignored; the connection is push-only.
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Debug("websocket read error", "room", c.Room, "error", err)
			}
			break
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.mu.Lock()
		c.isClosed = true
		c.mu.Unlock()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
