// internal/domain/sms/dto.go
package sms

// SendResult is what an outbound send reports back. It is also the body of
// the test_sms diagnostic.
type SendResult struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message,omitempty"`
	TestMode  bool             `json:"test_mode"`
	SMSResult *GatewayResponse `json:"sms_result,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// TurnResult is the outcome of processing one inbound message.
type TurnResult struct {
	Success    bool    `json:"success"`
	Phone      string  `json:"phone,omitempty"`
	Received   string  `json:"received"`
	Response   string  `json:"response"`
	CustomerID *string `json:"customer_id"`
	IsReal     bool    `json:"is_real"`
	Duplicate  bool    `json:"duplicate,omitempty"`
	Error      string  `json:"error,omitempty"`
}
