package protocol

// ScreenshotParams represents the payload of a take_screenshot command.
type ScreenshotParams struct {
	WindowLabel     string `json:"window_label,omitempty"`
	ApplicationName string `json:"application_name,omitempty"`
	Quality         *int   `json:"quality,omitempty"`
	MaxWidth        *int   `json:"max_width,omitempty"`
}

// ScreenshotResult represents the data of a successful take_screenshot command.
type ScreenshotResult struct {
	ImageDataURL string `json:"image_data_url"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Strategy     string `json:"strategy"`
	Degraded     bool   `json:"degraded"`
}

// DOMParams represents the object form of a get_dom payload.
type DOMParams struct {
	WindowLabel string `json:"window_label"`
}

// ExecuteJSParams represents the payload of an execute_js command.
type ExecuteJSParams struct {
	WindowLabel string `json:"window_label,omitempty"`
	Code        string `json:"code"`
	TimeoutMs   int    `json:"timeout_ms,omitempty"`
}

// LocalStorageParams represents the payload of a manage_local_storage command.
// Value is a pointer so set can distinguish an absent value from an empty one.
type LocalStorageParams struct {
	WindowLabel string  `json:"window_label,omitempty"`
	Operation   string  `json:"operation"`
	Key         string  `json:"key,omitempty"`
	Value       *string `json:"value,omitempty"`
}

// WindowParams represents the payload of a manage_window command.
type WindowParams struct {
	WindowLabel string `json:"window_label,omitempty"`
	Operation   string `json:"operation"`
	X           *int   `json:"x,omitempty"`
	Y           *int   `json:"y,omitempty"`
	Width       *int   `json:"width,omitempty"`
	Height      *int   `json:"height,omitempty"`
}

// WindowResult represents the data of a manage_window command.
type WindowResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// TextInputParams represents the payload of a simulate_text_input command.
type TextInputParams struct {
	WindowLabel    string `json:"window_label,omitempty"`
	Text           string `json:"text"`
	DelayMs        *int   `json:"delay_ms,omitempty"`
	InitialDelayMs *int   `json:"initial_delay_ms,omitempty"`
}

// TextInputResult represents the data of a simulate_text_input command.
type TextInputResult struct {
	Success    bool   `json:"success"`
	CharsTyped int    `json:"chars_typed"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// MouseParams represents the payload of a simulate_mouse_movement command.
type MouseParams struct {
	X        *int   `json:"x"`
	Y        *int   `json:"y"`
	Relative bool   `json:"relative,omitempty"`
	Click    bool   `json:"click,omitempty"`
	Button   string `json:"button,omitempty"`
}

// MouseResult represents the data of a simulate_mouse_movement command.
type MouseResult struct {
	Success    bool    `json:"success"`
	DurationMs int64   `json:"duration_ms"`
	Position   *[2]int `json:"position,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// ElementPositionParams represents the payload of a get_element_position command.
type ElementPositionParams struct {
	WindowLabel    string `json:"window_label,omitempty"`
	SelectorType   string `json:"selector_type"`
	SelectorValue  string `json:"selector_value"`
	ShouldClick    bool   `json:"should_click,omitempty"`
	RawCoordinates bool   `json:"raw_coordinates,omitempty"`
}

// SendTextParams represents the payload of a send_text_to_element command.
type SendTextParams struct {
	WindowLabel   string `json:"window_label,omitempty"`
	SelectorType  string `json:"selector_type"`
	SelectorValue string `json:"selector_value"`
	Text          string `json:"text"`
	DelayMs       *int   `json:"delay_ms,omitempty"`
}
