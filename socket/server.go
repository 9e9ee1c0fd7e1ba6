package socket

import (
	"net/http"

	"matchfeed_server/services"

	socketio "github.com/googollee/go-socket.io"
	"go.uber.org/zap"
)

// Server pushes access-request events to connected users. Each user joins a
// room named after their profile id.
type Server struct {
	io       *socketio.Server
	verifier *services.TokenVerifier
	logger   *zap.Logger
}

var _ services.Notifier = (*Server)(nil)

// NewServer initializes the Socket.IO server and its event handlers
func NewServer(verifier *services.TokenVerifier, logger *zap.Logger) *Server {
	s := &Server{io: socketio.NewServer(nil), verifier: verifier, logger: logger}

	s.io.OnConnect("/", func(c socketio.Conn) error {
		s.logger.Debug("✅ Socket connected", zap.String("socket", c.ID()))
		return nil
	})

	// Clients join their own room by presenting the bearer token
	s.io.OnEvent("/", "join", func(c socketio.Conn, token string) {
		userID, err := s.verifier.Verify(token)
		if err != nil {
			s.logger.Warn("❌ Socket join rejected", zap.String("socket", c.ID()), zap.Error(err))
			c.Emit("joinError", "invalid token")
			return
		}
		c.Join(userID)
		s.logger.Debug("👥 Socket joined room", zap.String("socket", c.ID()), zap.String("user", userID))
	})

	s.io.OnError("/", func(c socketio.Conn, err error) {
		s.logger.Warn("⚠️ Socket error", zap.Error(err))
	})

	s.io.OnDisconnect("/", func(c socketio.Conn, reason string) {
		s.logger.Debug("❌ Socket disconnected", zap.String("socket", c.ID()), zap.String("reason", reason))
	})

	return s
}

// NotifyAccessRequest broadcasts an event to the user's room. Users that are
// not connected miss the event.
func (s *Server) NotifyAccessRequest(userID string, event services.AccessRequestEvent) {
	if ok := s.io.BroadcastToRoom("/", userID, "accessRequest", event); !ok {
		s.logger.Debug("ℹ️ No socket room for access request event", zap.String("user", userID))
	}
}

// Serve runs the socket.io event loop until Close is called
func (s *Server) Serve() error {
	return s.io.Serve()
}

// Close stops the server
func (s *Server) Close() error {
	return s.io.Close()
}

// Handler exposes the server for mounting under /socket.io/
func (s *Server) Handler() http.Handler {
	return s.io
}
