// Package booking takes a hotel booking request from free text to a
// confirmation: the model extracts the booking details, a router checks
// they are complete, and the inventory decides availability.
package booking

import (
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/chatgraph/internal/hotel"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/llm"
	"github.com/randalmurphal/chatgraph/pkg/chatgraph/observability"
)

// Node IDs.
const (
	NodeExtract    = "extract"
	NodeAskMissing = "ask_missing"
	NodeNotBooking = "not_booking"
	NodeCheck      = "check"
	NodeFinal      = "final"
)

// Route labels returned by Validate.
const (
	LabelNotBooking  chatgraph.Label = "not_booking"
	LabelMissingInfo chatgraph.Label = "missing_info"
	LabelComplete    chatgraph.Label = "complete"
)

// IntentBookHotel is the only intent this workflow handles.
const IntentBookHotel = "book_hotel"

// Fixed replies.
const (
	AskMissingReply  = "Please provide city, date, and room type."
	NotBookingReply  = "I currently handle only hotel bookings."
	UnavailableReply = "Sorry, room not available."
)

// Schema describes BookingInfo to the model.
const Schema = `intent: "book_hotel" if the user wants to book a hotel room, otherwise "other"
city: city name
date: booking date, as the user wrote it
room_type: room type requested, for example "deluxe"`

var (
	errNilClient    = errors.New("booking: model client is required")
	errNilInventory = errors.New("booking: inventory is required")
)

// BookingInfo is the structured form of a booking request.
type BookingInfo struct {
	Intent   string `json:"intent" validate:"required"`
	City     string `json:"city"`
	Date     string `json:"date"`
	RoomType string `json:"room_type"`
}

// State is threaded through the graph.
type State struct {
	Messages         []llm.Message `validate:"min=1"`
	BookingInfo      *BookingInfo
	Available        bool
	BookingConfirmed bool
}

// NewState starts a conversation with one user message.
func NewState(input string) State {
	return State{Messages: []llm.Message{llm.UserMessage(input)}}
}

// Validate routes on the extracted details.
func Validate(_ chatgraph.Context, s State) chatgraph.Label {
	info := s.BookingInfo
	switch {
	case info == nil || info.Intent != IntentBookHotel:
		return LabelNotBooking
	case info.City == "" || info.Date == "" || info.RoomType == "":
		return LabelMissingInfo
	default:
		return LabelComplete
	}
}

// ConfirmationReply is the reply for a successful booking.
func ConfirmationReply(info BookingInfo) string {
	return fmt.Sprintf("Your %s room in %s is booked for %s.", info.RoomType, info.City, info.Date)
}

// New builds and compiles the booking graph. States are checked against
// their validate tags before the first node and after every node.
func New(client llm.Client, inventory hotel.Inventory, opts ...chatgraph.CompileOption) (*chatgraph.CompiledGraph[State], error) {
	if client == nil {
		return nil, errNilClient
	}
	if inventory == nil {
		return nil, errNilInventory
	}

	g := chatgraph.NewGraph[State]()
	if err := errors.Join(
		g.AddNode(NodeExtract, extract(client)),
		g.AddNode(NodeAskMissing, reply(AskMissingReply)),
		g.AddNode(NodeNotBooking, reply(NotBookingReply)),
		g.AddNode(NodeCheck, check(inventory)),
		g.AddNode(NodeFinal, final),
		g.SetEntry(NodeExtract),
		g.AddConditionalEdges(NodeExtract, Validate, map[chatgraph.Label]string{
			LabelMissingInfo: NodeAskMissing,
			LabelComplete:    NodeCheck,
			LabelNotBooking:  NodeNotBooking,
		}, chatgraph.WithLabels(LabelNotBooking, LabelMissingInfo, LabelComplete)),
		g.AddEdge(NodeCheck, NodeFinal),
		g.AddEdge(NodeAskMissing, chatgraph.END),
		g.AddEdge(NodeNotBooking, chatgraph.END),
		g.AddEdge(NodeFinal, chatgraph.END),
	); err != nil {
		return nil, err
	}

	return g.Compile(append([]chatgraph.CompileOption{chatgraph.WithName("booking"), chatgraph.WithStateValidation()}, opts...)...)
}

func extract(client llm.Client) chatgraph.NodeFunc[State] {
	return func(ctx chatgraph.Context, s State) (State, error) {
		info, err := llm.Extract[BookingInfo](ctx, client, llm.ExtractRequest{
			Text:   llm.LastContent(s.Messages),
			Schema: Schema,
		})
		if err != nil {
			return s, fmt.Errorf("extract booking info: %w", err)
		}

		ctx.Logger().Info("booking info extracted",
			"intent", info.Intent,
			"city", info.City,
			"date", info.Date,
			"room_type", info.RoomType,
		)
		s.BookingInfo = &info
		return s, nil
	}
}

func reply(text string) chatgraph.NodeFunc[State] {
	return func(_ chatgraph.Context, s State) (State, error) {
		s.Messages = llm.Append(s.Messages, llm.AssistantMessage(text))
		return s, nil
	}
}

func check(inventory hotel.Inventory) chatgraph.NodeFunc[State] {
	return func(ctx chatgraph.Context, s State) (State, error) {
		info := s.BookingInfo
		available, err := inventory.Available(ctx, info.City, info.RoomType)
		if err != nil {
			return s, fmt.Errorf("check availability: %w", err)
		}

		observability.AddSpanEvent(ctx, "inventory.lookup",
			attribute.String("city", info.City),
			attribute.String("room_type", info.RoomType),
			attribute.Bool("available", available),
		)
		ctx.Logger().Info("availability checked", "available", available)
		s.Available = available
		return s, nil
	}
}

func final(_ chatgraph.Context, s State) (State, error) {
	text := UnavailableReply
	if s.Available {
		text = ConfirmationReply(*s.BookingInfo)
	}
	s.BookingConfirmed = s.Available
	s.Messages = llm.Append(s.Messages, llm.AssistantMessage(text))
	return s, nil
}
