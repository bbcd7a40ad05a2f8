package dto

// SendSMSRequest sends a text message to a debtor
type SendSMSRequest struct {
	To       string `json:"to" validate:"max=32"`
	Message  string `json:"message" validate:"max=918"`
	DebtorID *uint  `json:"debtor_id,omitempty"`
}

// SendEmailRequest sends a letterhead email to a debtor
type SendEmailRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Subject  string `json:"subject" validate:"max=255"`
	Body     string `json:"body"`
	DebtorID *uint  `json:"debtor_id,omitempty"`
}

// WhatsAppLinkRequest builds a wa.me deep link
type WhatsAppLinkRequest struct {
	Phone    string `json:"phone" validate:"max=32"`
	Message  string `json:"message"`
	DebtorID *uint  `json:"debtor_id,omitempty"`
}

// SoftphoneRequest builds the WebRTC softphone popup URL
type SoftphoneRequest struct {
	Number   string `query:"number" validate:"required,max=32"`
	DebtorID *uint  `query:"debtor_id"`
}

// SendResult is the outcome of an outbound message
type SendResult struct {
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
	Status    string `json:"status"`
}

// LinkResponse carries a generated URL
type LinkResponse struct {
	URL string `json:"url"`
}

// MessageTemplateDTO is a reusable outreach message
type MessageTemplateDTO struct {
	ID      int    `json:"id"`
	Channel string `json:"channel"`
	Name    string `json:"name"`
	Subject string `json:"subject,omitempty"`
	Text    string `json:"text"`
}

// TemplatesResponse groups the templates by channel
type TemplatesResponse struct {
	SMS      []MessageTemplateDTO `json:"sms"`
	WhatsApp []MessageTemplateDTO `json:"whatsapp"`
	Email    []MessageTemplateDTO `json:"email"`
}

// RenderTemplateRequest fills a template from a debtor
type RenderTemplateRequest struct {
	Channel    string  `json:"channel" validate:"required,oneof=sms whatsapp email"`
	TemplateID int     `json:"template_id" validate:"required"`
	DebtorID   uint    `json:"debtor_id" validate:"required"`
	Amount     *string `json:"amount,omitempty"`
	Date       *string `json:"date,omitempty"`
	Days       *int    `json:"days,omitempty"`
}

// RenderTemplateResponse is a ready-to-send message
type RenderTemplateResponse struct {
	Subject string `json:"subject,omitempty"`
	Text    string `json:"text"`
}
