package protocol

import "encoding/json"

// Request represents a single command read from the control socket.
type Request struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents the reply envelope written back for each request.
type Response struct {
	Success bool    `json:"success"`
	Data    any     `json:"data,omitempty"`
	Error   *string `json:"error,omitempty"`
}

// OK builds a success response around data.
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// Fail builds an error response with the given message.
func Fail(msg string) Response {
	return Response{Success: false, Error: &msg}
}

// Command names accepted on the control socket.
const (
	CmdPing                  = "ping"
	CmdTakeScreenshot        = "take_screenshot"
	CmdGetDOM                = "get_dom"
	CmdExecuteJS             = "execute_js"
	CmdManageLocalStorage    = "manage_local_storage"
	CmdManageWindow          = "manage_window"
	CmdSimulateTextInput     = "simulate_text_input"
	CmdSimulateMouseMovement = "simulate_mouse_movement"
	CmdGetElementPosition    = "get_element_position"
	CmdSendTextToElement     = "send_text_to_element"
)
