package assistant

import "encoding/json"

// Result is what ProcessMessage hands back to the transport. Response is
// always set; on failure Error and Kind say why.
type Result struct {
	Success  bool            `json:"success"`
	Response string          `json:"response"`
	Intent   Category        `json:"intent,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
	Command  Command         `json:"command,omitempty"`
	Error    string          `json:"error,omitempty"`
	Kind     Kind            `json:"error_kind,omitempty"`
	Choices  []string        `json:"choices,omitempty"`
}

func failure(resp string, err *Error) Result {
	return Result{
		Response: resp,
		Error:    err.Error(),
		Kind:     err.Kind,
		Choices:  err.Choices,
	}
}
