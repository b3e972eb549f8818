package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/rupeex/usdt-inr-exchange/backend/internal/core/ports"
	"github.com/rupeex/usdt-inr-exchange/backend/internal/entities"
)

// Manager upgrades HTTP connections to WebSocket.
type Manager struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWebSocketManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
	}
}

func (m *Manager) Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return m.upgrader.Upgrade(w, r, nil)
}

// WebSocketHandler streams live rate quotes to connected clients.
type WebSocketHandler struct {
	logger           *slog.Logger
	rates            ports.RateService
	websocketManager *Manager
}

func NewWebSocketHandler(logger *slog.Logger, rates ports.RateService, websocketManager *Manager) *WebSocketHandler {
	return &WebSocketHandler{
		logger:           logger,
		rates:            rates,
		websocketManager: websocketManager,
	}
}

func (h *WebSocketHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/ws/rate", h.HandleConnection)
}

func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.websocketManager.Upgrade(w, r)
	if err != nil {
		h.logger.Error("Error upgrading connection", "error", err)
		return
	}
	defer conn.Close()

	h.logger.Info("New rate stream connection", "remote", conn.RemoteAddr().String())

	quotes := make(chan entities.RateQuote, 8)
	unsubscribe := h.rates.Subscribe(quotes)
	defer unsubscribe()

	// Push the current quote right away so clients render without waiting
	// for the next refresh.
	if err = conn.WriteJSON(h.rates.Current()); err != nil {
		h.logger.Error("Failed to write initial quote", "error", err)
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			h.logger.Info("Rate stream connection closed", "remote", conn.RemoteAddr().String())
			return
		case quote := <-quotes:
			if err = conn.WriteJSON(quote); err != nil {
				h.logger.Error("Failed to write quote", "error", err)
				return
			}
		}
	}
}
