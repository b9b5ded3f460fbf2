package ability

// InputRequestKind tags an InputRequest variant.
type InputRequestKind uint8

const (
	// RequestCursor asks the client to pick a tile within range/radius
	// of a center point.
	RequestCursor InputRequestKind = iota
	// RequestPrompt asks for a yes/no/cancel reply.
	RequestPrompt
	// RequestDirection asks for one of the eight compass directions.
	RequestDirection
)

// InputRequest is what an on_input coroutine yields when it needs more
// information from the client before it can produce a final argument map.
type InputRequest struct {
	Kind InputRequestKind

	// RequestCursor
	X, Y, Range int
	Radius      *int // nil means a single-tile selection

	// RequestPrompt / RequestDirection
	Message string
}

// CursorRequest builds a bounded-area tile selection request.
func CursorRequest(x, y, rng int, radius *int, message string) InputRequest {
	return InputRequest{Kind: RequestCursor, X: x, Y: y, Range: rng, Radius: radius, Message: message}
}

// PromptRequest builds a yes/no/cancel request.
func PromptRequest(message string) InputRequest {
	return InputRequest{Kind: RequestPrompt, Message: message}
}

// DirectionRequest builds an eight-compass-direction request.
func DirectionRequest(message string) InputRequest {
	return InputRequest{Kind: RequestDirection, Message: message}
}
