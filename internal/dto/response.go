package dto

// Response is the envelope shared by every endpoint, success or failure.
type Response struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func OK(message string, data any) Response {
	return Response{Success: true, Message: message, Data: data}
}

func Fail(message string, errs ...string) Response {
	return Response{Success: false, Message: message, Errors: errs}
}
