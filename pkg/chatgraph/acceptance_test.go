package chatgraph

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingState struct {
	Intent    string
	City      string
	Date      string
	RoomType  string
	Available bool
	Reply     string
}

// newBookingGraph wires extract -> {check, ask_missing, not_booking} and
// check -> final, with extraction replaced by a canned result.
func newBookingGraph(t *testing.T, extracted bookingState) *CompiledGraph[bookingState] {
	t.Helper()

	extract := func(ctx Context, s bookingState) (bookingState, error) {
		s.Intent, s.City, s.Date, s.RoomType = extracted.Intent, extracted.City, extracted.Date, extracted.RoomType
		return s, nil
	}
	validate := func(ctx Context, s bookingState) Label {
		switch {
		case s.Intent != "book_hotel":
			return "not_booking"
		case s.City == "" || s.Date == "" || s.RoomType == "":
			return "missing_info"
		default:
			return "complete"
		}
	}
	reply := func(text string) NodeFunc[bookingState] {
		return func(ctx Context, s bookingState) (bookingState, error) {
			s.Reply = text
			return s, nil
		}
	}
	check := func(ctx Context, s bookingState) (bookingState, error) {
		s.Available = strings.EqualFold(s.City, "mumbai") && strings.EqualFold(s.RoomType, "deluxe")
		return s, nil
	}
	final := func(ctx Context, s bookingState) (bookingState, error) {
		if s.Available {
			s.Reply = fmt.Sprintf("Your %s room in %s is booked for %s.", s.RoomType, s.City, s.Date)
		} else {
			s.Reply = "Sorry, room not available."
		}
		return s, nil
	}

	graph := NewGraph[bookingState]()
	must(t,
		graph.AddNode("extract", extract),
		graph.AddNode("check", check),
		graph.AddNode("final", final),
		graph.AddNode("ask_missing", reply("Please provide city, date, and room type.")),
		graph.AddNode("not_booking", reply("I currently handle only hotel bookings.")),
		graph.SetEntry("extract"),
		graph.AddConditionalEdges("extract", validate, map[Label]string{
			"complete":     "check",
			"missing_info": "ask_missing",
			"not_booking":  "not_booking",
		}, WithLabels("complete", "missing_info", "not_booking")),
		graph.AddEdge("check", "final"),
		graph.AddEdge("final", END),
		graph.AddEdge("ask_missing", END),
		graph.AddEdge("not_booking", END),
	)

	compiled, err := graph.Compile(WithName("booking"))
	require.NoError(t, err)
	return compiled
}

func TestAcceptance_Booking(t *testing.T) {
	testCases := []struct {
		name      string
		extracted bookingState
		path      []string
		reply     string
	}{
		{
			name:      "available",
			extracted: bookingState{Intent: "book_hotel", City: "Mumbai", Date: "2024-05-10", RoomType: "deluxe"},
			path:      []string{"extract", "check", "final"},
			reply:     "Your deluxe room in Mumbai is booked for 2024-05-10.",
		},
		{
			name:      "unavailable",
			extracted: bookingState{Intent: "book_hotel", City: "Delhi", Date: "2024-05-10", RoomType: "deluxe"},
			path:      []string{"extract", "check", "final"},
			reply:     "Sorry, room not available.",
		},
		{
			name:      "missing info",
			extracted: bookingState{Intent: "book_hotel", City: "Mumbai"},
			path:      []string{"extract", "ask_missing"},
			reply:     "Please provide city, date, and room type.",
		},
		{
			name:      "not booking",
			extracted: bookingState{Intent: "chitchat"},
			path:      []string{"extract", "not_booking"},
			reply:     "I currently handle only hotel bookings.",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			compiled := newBookingGraph(t, tc.extracted)

			var path []string
			result, err := compiled.Invoke(testCtx(), bookingState{}, WithStepHook(func(_ int, nodeID string) {
				path = append(path, nodeID)
			}))

			require.NoError(t, err)
			assert.Equal(t, tc.path, path)
			assert.Equal(t, tc.reply, result.Reply)
		})
	}
}

func TestAcceptance_ReusableCompiledGraph(t *testing.T) {
	compiled := newBookingGraph(t, bookingState{Intent: "book_hotel", City: "mumbai", Date: "d", RoomType: "DELUXE"})

	for i := 0; i < 3; i++ {
		result, err := compiled.Invoke(testCtx(), bookingState{})
		require.NoError(t, err)
		assert.True(t, result.Available)
	}
}
