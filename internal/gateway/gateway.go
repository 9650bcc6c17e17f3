// Package gateway is the chat-facing edge of the reminder engine: it
// accepts websocket connections, treats every inbound frame as user
// activity, and pushes due-task reminders back out. Delivery prefers
// the user's own connection and falls back to the shared channel when
// that fails, like a bot falling back from DMs to a public room.
package gateway

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/td0m/remind/pkg/engine"
	"github.com/td0m/remind/pkg/task"
)

// ErrUndeliverable means the user has no live direct connection, or
// writing to it failed. The caller decides what to do next; the hub
// does not retry.
var ErrUndeliverable = errors.New("undeliverable")

// Sink delivers a reminder payload to a user
type Sink interface {
	Deliver(user string, due []task.Task) error
}

type Hub struct {
	engine *engine.Engine

	mu      sync.Mutex
	users   map[string]*websocket.Conn
	channel map[*websocket.Conn]bool
}

var _ Sink = &Hub{}

var upgrader = websocket.Upgrader{
	// the daemon fronts trusted chat clients, not browsers
	CheckOrigin: func(*http.Request) bool { return true },
}

func NewHub(e *engine.Engine) *Hub {
	return &Hub{
		engine:  e,
		users:   map[string]*websocket.Conn{},
		channel: map[*websocket.Conn]bool{},
	}
}

// Reminder is one nagging task in a reminder payload
type Reminder struct {
	Description string `json:"description"`
	DaysLeft    int    `json:"daysLeft"`
}

// Listing is one task in a tasks-query response
type Listing struct {
	Description string `json:"description"`
	Due         string `json:"due"`
	Status      string `json:"status"`
}

type message struct {
	Type      string     `json:"type"`
	User      string     `json:"user,omitempty"`
	Text      string     `json:"text,omitempty"`
	Reminders []Reminder `json:"reminders,omitempty"`
	Tasks     []Listing  `json:"tasks,omitempty"`
}

// ServeUser upgrades a direct per-user connection. The user identifier
// comes from the query string; every frame the user sends afterwards
// counts as activity.
func (h *Hub) ServeUser(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	if user == "" {
		http.Error(w, "missing user", http.StatusBadRequest)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.register(user, conn)
	defer h.unregister(user, conn)

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return
		}
		h.handleFrame(user, string(frame))
	}
}

// ServeChannel upgrades a shared-channel connection, the fallback
// surface when a user cannot be reached directly.
func (h *Hub) ServeChannel(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.channel[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.channel, conn)
		h.mu.Unlock()
		conn.Close()
	}()
	for {
		// channel connections only listen
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// handleFrame interprets one inbound frame. A few line commands map to
// engine operations; everything else is plain chatter. Either way the
// frame is an activity signal, so reminder eligibility is re-checked
// afterwards.
func (h *Hub) handleFrame(user, text string) {
	fields := strings.Fields(text)
	if len(fields) > 0 {
		switch fields[0] {
		case "tasks":
			// anyone can look at anyone's list
			target := user
			if len(fields) > 1 {
				target = fields[1]
			}
			h.sendListing(user, target)
		case "snooze":
			if len(fields) > 2 {
				d := engine.SnoozeHour
				if fields[1] == "day" {
					d = engine.SnoozeDay
				}
				if err := h.engine.Snooze(user, []string{strings.Join(fields[2:], " ")}, d); err != nil {
					log.Printf("snooze for %s: %v", user, err)
				}
			}
		case "done":
			if len(fields) > 1 {
				if err := h.engine.Complete(user, []string{strings.Join(fields[1:], " ")}); err != nil {
					log.Printf("complete for %s: %v", user, err)
				}
			}
		}
	}

	due := h.engine.EvaluateOnActivity(user)
	if len(due) == 0 {
		return
	}
	if err := h.Deliver(user, due); errors.Is(err, ErrUndeliverable) {
		h.Broadcast(user, due)
	}
}

// Deliver pushes a reminder payload over the user's direct connection
func (h *Hub) Deliver(user string, due []task.Task) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.users[user]
	if !ok {
		return ErrUndeliverable
	}
	if err := conn.WriteJSON(reminderPayload(user, due, h.engine.Now())); err != nil {
		return ErrUndeliverable
	}
	return nil
}

// Broadcast posts a user's reminders to every shared-channel listener
func (h *Hub) Broadcast(user string, due []task.Task) {
	h.mu.Lock()
	defer h.mu.Unlock()

	payload := reminderPayload(user, due, h.engine.Now())
	for conn := range h.channel {
		if err := conn.WriteJSON(payload); err != nil {
			log.Printf("channel write: %v", err)
		}
	}
}

// Clients reports how many direct connections are live, for status
// reporting.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.users)
}

func (h *Hub) sendListing(user, target string) {
	listed := h.engine.List(target)
	tasks := make([]Listing, len(listed))
	for i, l := range listed {
		tasks[i] = Listing{
			Description: l.Description,
			Due:         l.Due.Format("2006-01-02"),
			Status:      l.Status,
		}
	}
	msg := message{Type: "tasks", User: target, Tasks: tasks}
	if len(tasks) == 0 {
		msg.Text = "no tasks found"
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if conn, ok := h.users[user]; ok {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("listing write: %v", err)
		}
	}
}

func (h *Hub) register(user string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	// a reconnect replaces the previous connection
	if old, ok := h.users[user]; ok {
		old.Close()
	}
	h.users[user] = conn
}

func (h *Hub) unregister(user string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[user] == conn {
		delete(h.users, user)
	}
	conn.Close()
}

func reminderPayload(user string, due []task.Task, now time.Time) message {
	reminders := make([]Reminder, len(due))
	for i, t := range due {
		reminders[i] = Reminder{Description: t.Description, DaysLeft: t.DaysLeft(now)}
	}
	return message{Type: "reminder", User: user, Reminders: reminders}
}
