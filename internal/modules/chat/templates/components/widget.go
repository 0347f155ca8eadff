package components

import (
	"fmt"
	"strconv"
	"strings"

	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"

	"github.com/nfrund/plug/internal/chat"
)

// BasePath is where the chat module is mounted.
const BasePath = "/chat"

// Element IDs the fragments and plug.js agree on.
const (
	IDMessages = "chat-messages"
	IDTyping   = "chat-typing"
	IDEnd      = "chat-end"
	IDScroll   = "chat-scroll"
	IDState    = "chat-state"
	IDComposer = "chat-composer"
	IDInput    = "chat-input"
	IDSend     = "chat-send"
)

const (
	WidgetTitle      = "Plug"
	InputPlaceholder = "Ask about our premium edibles..."
	ClosedText       = "This conversation has ended. Reload the page to start a new one."
)

const sendIcon = `<svg fill="none" stroke="currentColor" viewBox="0 0 24 24" aria-hidden="true"><path stroke-linecap="round" stroke-linejoin="round" stroke-width="2" d="M7 11l5-5m0 0l5 5m-5-5v12"/></svg>`

// Links holds the per-conversation endpoints.
type Links struct {
	Socket   string
	Messages string
	Keys     string
}

// LinksFor builds the endpoints of one conversation.
func LinksFor(conversationID string) Links {
	base := BasePath + "/" + conversationID
	return Links{
		Socket:   base + "/ws",
		Messages: base + "/messages",
		Keys:     base + "/keys",
	}
}

// Widget renders the whole chat card for a conversation snapshot. The root
// opens the websocket that later fragments arrive on.
func Widget(snap chat.Snapshot) g.Node {
	links := LinksFor(snap.ID)
	return Div(
		Class("chat-root"),
		Section(
			Class("chat"),
			ID("chat"),
			Data("conversation-id", snap.ID),
			hx.Ext("ws"),
			g.Attr("ws-connect", links.Socket),
			Header(
				Class("chat__header"),
				H1(Class("chat__title"), g.Text(WidgetTitle)),
			),
			Div(
				Class("chat__log"),
				Role("log"),
				Aria("live", "polite"),
				Transcript(snap.Messages),
				Typing(snap.Waiting),
				Div(ID(IDEnd)),
			),
			Div(ID(IDScroll), g.Attr("hidden")),
			State(snap.Waiting, snap.Closed),
			Composer(snap.ID, snap.Input, canSend(snap)),
		),
	)
}

func canSend(snap chat.Snapshot) bool {
	return !snap.Closed && !snap.Waiting && strings.TrimSpace(snap.Input) != ""
}

// Bubble renders one message.
func Bubble(m chat.Message) g.Node {
	sender := string(m.Sender)
	return Div(
		Class("chat-message "+sender),
		ID(fmt.Sprintf("chat-message-%d", m.ID)),
		Data("message-id", strconv.FormatInt(m.ID, 10)),
		Div(Class("message-bubble "+sender), g.Text(m.Text)),
	)
}

// Transcript renders the message list container.
func Transcript(msgs []chat.Message) g.Node {
	return Div(ID(IDMessages), bubbles(msgs))
}

// TranscriptOOB replaces the message list contents.
func TranscriptOOB(msgs []chat.Message) g.Node {
	return Div(ID(IDMessages), hx.SwapOOB("innerHTML"), bubbles(msgs))
}

func bubbles(msgs []chat.Message) g.Node {
	return g.Map(msgs, func(m chat.Message) g.Node { return Bubble(m) })
}

// AppendedOOB appends one message to the list.
func AppendedOOB(m chat.Message) g.Node {
	return Div(
		hx.SwapOOB("beforeend:#"+IDMessages),
		Bubble(m),
	)
}

// Typing renders the typing indicator slot.
func Typing(waiting bool) g.Node {
	return Div(ID(IDTyping), g.If(waiting, typingBubble()))
}

// TypingOOB fills or empties the typing indicator slot.
func TypingOOB(waiting bool) g.Node {
	return Div(ID(IDTyping), hx.SwapOOB("innerHTML"), g.If(waiting, typingBubble()))
}

func typingBubble() g.Node {
	return Div(
		Class("chat-message assistant loading"),
		Div(
			Class("message-bubble assistant"),
			Div(Class("loading-dots"), Span(), Span(), Span()),
			Span(Class("visually-hidden"), g.Text(WidgetTitle+" is typing")),
		),
	)
}

// State carries the flags plug.js uses to enable the send button.
func State(waiting, closed bool) g.Node {
	return Div(ID(IDState), g.Attr("hidden"), stateFlags(waiting, closed))
}

// StateOOB refreshes the flags.
func StateOOB(waiting, closed bool) g.Node {
	return Div(ID(IDState), hx.SwapOOB("innerHTML"), stateFlags(waiting, closed))
}

func stateFlags(waiting, closed bool) g.Node {
	return Span(
		Data("waiting", strconv.FormatBool(waiting)),
		Data("closed", strconv.FormatBool(closed)),
	)
}

// ScrollOOB tells the browser to bring the end of the list into view. seq is
// the message count that requested the scroll.
func ScrollOOB(seq int) g.Node {
	return Div(ID(IDScroll), hx.SwapOOB("innerHTML"), Span(Data("seq", strconv.Itoa(seq))))
}

// ClosedOOB appends the end-of-conversation notice.
func ClosedOOB() g.Node {
	return Div(
		hx.SwapOOB("beforeend:#"+IDMessages),
		P(Class("chat-notice"), Role("status"), g.Text(ClosedText)),
	)
}

// Composer renders the input form. Enter without shift posts to the keys
// endpoint; the server answers with a fresh composer or 204.
func Composer(conversationID, input string, canSend bool) g.Node {
	links := LinksFor(conversationID)
	return Form(
		ID(IDComposer),
		Class("chat__composer"),
		hx.Post(links.Messages),
		hx.Target("this"),
		hx.Swap("outerHTML"),
		Div(
			Class("chat__field"),
			Label(For(IDInput), Class("visually-hidden"), g.Text("Message")),
			Textarea(
				ID(IDInput),
				Name("message"),
				Class("chat__input"),
				g.Attr("rows", "1"),
				g.Attr("placeholder", InputPlaceholder),
				g.Attr("autocomplete", "off"),
				hx.Post(links.Keys),
				hx.Trigger("keydown[key=='Enter']"),
				hx.Target("#"+IDComposer),
				hx.Swap("outerHTML"),
				g.Attr("hx-vals", "js:{key: event.key, shift: event.shiftKey}"),
				g.Text(input),
			),
			Button(
				ID(IDSend),
				Type("submit"),
				Class("chat__send"),
				Aria("label", "Send message"),
				g.If(!canSend, Disabled()),
				g.Raw(sendIcon),
			),
		),
	)
}
