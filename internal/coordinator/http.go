package coordinator

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Mandy077/TaskAssigner-1/internal/middleware"
	"github.com/Mandy077/TaskAssigner-1/internal/protocol"
	"github.com/Mandy077/TaskAssigner-1/internal/session"
)

// Handler returns the service's HTTP surface: the websocket endpoint,
// health, room occupancy, and metrics.
func (c *Coordinator) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(c.logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   c.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", handleHealth)
	r.Get("/ws", c.handleWS)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/rooms/{roomId}", c.handleRoomOccupancy)
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleWS upgrades the connection and runs the session endpoint for
// its lifetime. The first frame on every connection is `connected`
// with the server-minted session ID; identifiers are never reused
// across connections.
func (c *Coordinator) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s := session.New(uuid.NewString(), conn, c.logger, c.cfg.SendQueueSize, c.cfg.MaxMessageBytes,
		time.Duration(c.cfg.PingIntervalSec)*time.Second,
		time.Duration(c.cfg.PongWaitSec)*time.Second,
	)
	c.addSession(s)

	welcome, err := protocol.Marshal(protocol.TypeConnected, protocol.Connected{
		SessionID:  s.ID,
		ICEServers: []protocol.ICEServer{{URLs: c.cfg.STUNServers}},
	})
	if err != nil {
		c.logger.Error("marshal connected", zap.Error(err))
		c.dropSession(s)
		s.Close()
		return
	}
	s.TrySend(welcome)

	c.logger.Info("session opened",
		zap.String("session", s.ID),
		zap.String("remote", r.RemoteAddr),
	)

	router := c.buildRouter(s)
	go s.WritePump()
	s.ReadPump(
		func(raw []byte) { c.dispatch(s, router, raw) },
		func() { c.dropSession(s) },
	)
}

type roomOccupancyResponse struct {
	RoomID       string                 `json:"roomId"`
	Participants []protocol.Participant `json:"participants"`
}

// handleRoomOccupancy serves a read-only snapshot of a room for the
// meeting join form.
func (c *Coordinator) handleRoomOccupancy(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	members, ok := c.registry.Members(roomID)
	if !ok {
		http.Error(w, `{"error":"room not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(roomOccupancyResponse{
		RoomID:       roomID,
		Participants: toWireParticipants(members),
	})
}

// originChecker allows any origin when the configuration says "*",
// and exact matches otherwise. Browser meeting clients are served
// from a different origin than this service.
func originChecker(allowed []string) func(*http.Request) bool {
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
	}
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		allowedSet[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowedSet[origin]
		return ok
	}
}
