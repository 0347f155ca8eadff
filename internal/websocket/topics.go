package websocket

import "github.com/nfrund/plug/internal/pubsub"

// Framework topics used by the bridge. HTML topics carry rendered fragments
// as raw payloads; lifecycle topics carry ClientEvent JSON.
const (
	// TopicHTMLBroadcast pushes a fragment to every connected client.
	TopicHTMLBroadcast = "ws.html.broadcast"
	// TopicHTMLDirect pushes a fragment to the clients of one audience. The
	// audience goes in the "recipient_id" metadata key.
	TopicHTMLDirect = "ws.html.direct"
)

// ClientEvent describes a websocket joining or leaving an audience.
type ClientEvent struct {
	Audience  string `json:"audience"`
	ClientID  string `json:"clientID"`
	Remaining int    `json:"remaining"`
	Reason    string `json:"reason,omitempty"`
}

var (
	// TopicClientReady is published once a client is registered and can receive messages.
	TopicClientReady = pubsub.NewEvent[ClientEvent]("ws.client.ready",
		"Published when a websocket client is registered and ready")
	// TopicClientDisconnected is published after a client has been removed.
	TopicClientDisconnected = pubsub.NewEvent[ClientEvent]("ws.client.disconnected",
		"Published when a websocket client disconnects")
)
