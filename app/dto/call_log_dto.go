package dto

// WebRTCWebhookRequest is the query string sent by the telephony provider.
// Some provider versions use the lower-case aliases.
type WebRTCWebhookRequest struct {
	CallSid           string `query:"CallSid"`
	EventType         string `query:"EventType"`
	Type              string `query:"type"`
	CallGroup         string `query:"CallGroup"`
	CallGroupAlias    string `query:"call_group"`
	Direction         string `query:"Direction"`
	SourceNumber      string `query:"SourceNumber"`
	DestinationNumber string `query:"DestinationNumber"`
	DialWhomNumber    string `query:"DialWhomNumber"`
	ReceiverName      string `query:"receiver_name"`
	AgentName         string `query:"AgentName"`
	Status            string `query:"Status"`
	CallDuration      string `query:"CallDuration"`
	StartTime         string `query:"StartTime"`
	EndTime           string `query:"EndTime"`
	RecordingURL      string `query:"RecordingUrl"`
	CallRecordingURL  string `query:"CallRecordingUrl"`
	Coins             string `query:"Coins"`
	CoinsAlias        string `query:"coins"`
}

// WebRTCWebhookResponse acknowledges a webhook delivery. CallID echoes the provider's CallSid.
type WebRTCWebhookResponse struct {
	Success bool   `json:"success"`
	CallID  string `json:"call_id"`
	ID      uint   `json:"id"`
}

// CallLogDTO is a telephony call record
type CallLogDTO struct {
	ID               uint    `json:"id"`
	CallSID          string  `json:"call_sid"`
	EventType        *string `json:"event_type,omitempty"`
	CallGroup        *string `json:"call_group,omitempty"`
	Direction        *string `json:"direction,omitempty"`
	AgentNumber      *string `json:"agent_number,omitempty"`
	AgentName        *string `json:"agent_name,omitempty"`
	ReceiverNumber   *string `json:"receiver_number,omitempty"`
	Status           *string `json:"status,omitempty"`
	CallDuration     int     `json:"call_duration"`
	StartTime        string  `json:"start_time"`
	EndTime          *string `json:"end_time,omitempty"`
	CallRecordingURL *string `json:"call_recording_url,omitempty"`
	Coins            int     `json:"coins"`
	DebtorID         *uint   `json:"debtor_id,omitempty"`
}

// ListCallLogsRequest filters the call log
type ListCallLogsRequest struct {
	AgentNumber string `query:"agent_number"`
	DebtorID    *uint  `query:"debtor_id"`
	Status      string `query:"status"`
	Limit       int    `query:"limit"`
}
