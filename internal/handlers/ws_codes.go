// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the game socket.
// These provide more specific reasons for closure than standard codes.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
	ReplacedConnection  = 3001 // A newer socket for the same player in the same game took over.
	RemovedFromGame     = 3002 // The player is no longer seated (kicked).
)
