// internal/domain/sms/entity.go
package sms

// InboundSMS is one message handed to the conversation pipeline.
type InboundSMS struct {
	From string
	Text string

	// MessageID is the carrier's id for the delivery, when it sends one.
	// Used to drop webhook redeliveries.
	MessageID string

	// IsReal is false for simulated messages; no reply is sent for those.
	IsReal bool
}

// Source describes where the message came from, for logs.
func (m InboundSMS) Source() string {
	if m.IsReal {
		return "REAL"
	}
	return "SIMULATED"
}

// GatewayRecipient is one entry of Africa's Talking's SMSMessageData.Recipients.
type GatewayRecipient struct {
	StatusCode int    `json:"statusCode"`
	Number     string `json:"number"`
	Status     string `json:"status"`
	Cost       string `json:"cost"`
	MessageID  string `json:"messageId"`
}

// GatewayResponse is the body Africa's Talking returns from the messaging endpoint.
type GatewayResponse struct {
	SMSMessageData struct {
		Message    string             `json:"Message"`
		Recipients []GatewayRecipient `json:"Recipients"`
	} `json:"SMSMessageData"`
}
