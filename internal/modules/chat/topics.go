package chat

import (
	chatcore "github.com/nfrund/plug/internal/chat"
	"github.com/nfrund/plug/internal/pubsub"
)

// TopicConversationEvent carries every state change of every conversation.
var TopicConversationEvent = pubsub.NewEvent[chatcore.Event](
	"chat.conversation.event",
	"Published when a conversation appends a message, changes its waiting state, requests a scroll or closes",
)
