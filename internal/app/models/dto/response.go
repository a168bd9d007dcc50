package dto

// APIResponse is the envelope for every JSON API response. Success is
// always present; Data carries payloads, Error carries the failure
// message, Count accompanies collection payloads.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// NewDataResponse creates a success response carrying a payload
func NewDataResponse(data interface{}) APIResponse {
	return APIResponse{Success: true, Data: data}
}

// NewListResponse creates a success response for a collection payload
func NewListResponse(data interface{}, count int) APIResponse {
	return APIResponse{Success: true, Count: &count, Data: data}
}

// NewMessageResponse creates a success response with a human-readable message
func NewMessageResponse(message string, data interface{}) APIResponse {
	return APIResponse{Success: true, Message: message, Data: data}
}

// NewErrorResponse creates a failure response
func NewErrorResponse(message string) APIResponse {
	return APIResponse{Success: false, Error: message}
}
