package apperr

// Result is the envelope every endpoint answers with.
type Result struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Kind    string      `json:"kind,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(message string, data interface{}) Result {
	return Result{Success: true, Message: message, Data: data}
}

func Fail(err *Error) Result {
	return Result{Success: false, Message: err.Message, Code: err.Code, Kind: err.Kind.String()}
}
