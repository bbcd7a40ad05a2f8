package businessflow

// MessageTemplate is a canned outreach message. Placeholders are {Name},
// {Client Name}, {Amount}, {Date} and {X}.
type MessageTemplate struct {
	ID      int
	Name    string
	Subject string
	Text    string
}

// SMSTemplates are sent through the SMS gateway
var SMSTemplates = []MessageTemplate{
	{ID: 1, Name: "First Outsource Notice", Text: "Dear {Name}, your debt has been outsourced to us by {Client Name}. Contact us ASAP to arrange settlement. Blueberry Voyage LTD +254720856052"},
	{ID: 2, Name: "Did Not Pick Call", Text: "Dear {Name}, we tried calling you regarding your debt with {Client Name} but got no response. Kindly call back: +254720856052"},
	{ID: 3, Name: "Avoiding Calls", Text: "Dear {Name}, we have tried calling you severally about your debt with {Client Name}. Please call us ASAP for an amicable solution. Blueberry Voyage LTD +254720856052"},
	{ID: 4, Name: "Ignoring Calls", Text: "Dear {Name}, you have refused to pick our calls. Prioritize settling your debt with {Client Name} to avoid escalation. Blueberry Voyage LTD +254720856052"},
	{ID: 5, Name: "Demand Letter Issued", Text: "Dear {Name}, a demand letter has been issued to you regarding your debt with {Client Name}. Please comply to avoid strict measures. Blueberry Voyage LTD +254720856052"},
	{ID: 6, Name: "Demand Letter Overdue", Text: "Dear {Name}, you have not complied with the demand letter for your debt with {Client Name}. Legal action may follow if no response. Blueberry Voyage LTD +254720856052"},
	{ID: 7, Name: "No Payment Commitment", Text: "Dear {Name}, we have contacted you about your debt with {Client Name}, but no payment plan has been offered. Please settle it ASAP. Blueberry Voyage LTD +254720856052"},
	{ID: 8, Name: "Unresponsive Employed Debtors", Text: "Dear {Name}, since you are unresponsive, we may escalate to your employer to recover your debt with {Client Name}. Call us ASAP. Blueberry Voyage LTD +254720856052"},
	{ID: 9, Name: "Partial Payments Reminder", Text: "Dear {Name}, kindly remember to submit your partial payment for your loan with {Client Name} this month. Share proof to 0792931986. Blueberry Voyage LTD +254720856052"},
	{ID: 10, Name: "PTP Reminder – 2 Days to Due Date", Text: "Dear {Name}, your KES {Amount} payment to {Client Name} is due in 2 days. Kindly prioritize and share proof of payment. Blueberry Voyage LTD +254720856052"},
	{ID: 11, Name: "PTP Reminder – 1 Day to Due Date", Text: "Dear {Name}, your KES {Amount} payment to {Client Name} is due tomorrow. Kindly make the payment and send proof. Blueberry Voyage LTD +254720856052"},
	{ID: 12, Name: "PTP Reminder – Due Today", Text: "Dear {Name}, your KES {Amount} payment to {Client Name} is due TODAY. Please pay and share proof immediately. Blueberry Voyage LTD +254720856052"},
	{ID: 13, Name: "PTP Reminder – 1 Day Overdue", Text: "Dear {Name}, your KES {Amount} payment to {Client Name} was due yesterday. Kindly pay and send proof ASAP. Blueberry Voyage LTD +254720856052"},
	{ID: 14, Name: "PTP Reminder – 2 Days Overdue", Text: "Dear {Name}, your KES {Amount} payment to {Client Name} is now 2 days overdue. Please settle it immediately. Blueberry Voyage LTD +254720856052"},
	{ID: 15, Name: "PTP Reminder – 3 Days Overdue", Text: "Dear {Name}, your KES {Amount} payment to {Client Name} was not honored on {Date}. Kindly share proof of payment. Blueberry Voyage LTD +254720856052"},
	{ID: 16, Name: "PTP Reminder – 4 Days Overdue", Text: "Dear {Name}, your KES {Amount} payment to {Client Name} is now 4 days overdue. Pay in 24hrs to avoid further action. Blueberry Voyage LTD +254720856052"},
	{ID: 17, Name: "PTP Reminder – 6+ Days Overdue", Text: "Dear {Name}, despite our reminders, your debt with {Client Name} remains unpaid. We may escalate if no action is taken. Blueberry Voyage LTD +254720856052"},
}

// WhatsAppTemplates prefill the wa.me deep link
var WhatsAppTemplates = []MessageTemplate{
	{ID: 1, Name: "First Outsource Notice", Text: "Dear {Name}, your debt with {Client Name} has been outsourced to us for collection. Please check your email for details and contact us ASAP to set up a settlement plan. – Blueberry Voyage LTD"},
	{ID: 2, Name: "Did Not Pick Call", Text: "Dear {Name}, we attempted to reach you regarding your outstanding debt with {Client Name} but received no response. Kindly return our call at your earliest convenience. – Blueberry Voyage LTD"},
	{ID: 3, Name: "Avoiding Calls", Text: "Dear {Name}, we have made several attempts to reach you regarding your overdue debt with {Client Name}. Please return our calls to discuss a resolution. – Blueberry Voyage LTD"},
	{ID: 4, Name: "Ignoring Calls", Text: "Dear {Name}, you have continuously ignored our calls regarding your debt with {Client Name}. Kindly address this matter urgently to prevent escalation. – Blueberry Voyage LTD"},
	{ID: 5, Name: "Demand Letter Issued", Text: "Dear {Name}, a demand letter has been issued regarding your outstanding debt with {Client Name}. Please comply to avoid further action. – Blueberry Voyage LTD"},
	{ID: 6, Name: "Demand Letter Overdue", Text: "Dear {Name}, your demand letter for your debt with {Client Name} is now overdue. Our legal team may escalate this if no action is taken. – Blueberry Voyage LTD"},
	{ID: 7, Name: "No Payment Commitment", Text: "Dear {Name}, despite repeated contact, no payment plan has been received for your debt with {Client Name}. Please prioritize this matter. – Blueberry Voyage LTD"},
	{ID: 8, Name: "Unresponsive Employed Debtors", Text: "Dear {Name}, since you are unresponsive, we may escalate recovery efforts, including contacting your employer regarding your debt with {Client Name}. – Blueberry Voyage LTD"},
	{ID: 9, Name: "Partial Payments Reminder", Text: "Dear {Name}, this is a reminder to make your monthly partial payment for your debt with {Client Name}. Kindly share proof once paid. – Blueberry Voyage LTD"},
	{ID: 10, Name: "Payment Reminders (2, 1, 0 Days)", Text: "Dear {Name}, your KES {Amount} payment to {Client Name} is due in {X} days. Kindly ensure timely payment and share proof. – Blueberry Voyage LTD"},
	{ID: 11, Name: "Overdue Payments (1+ Days Late)", Text: "Dear {Name}, your KES {Amount} payment to {Client Name} was due on {Date} and remains unpaid. Please pay immediately to avoid escalation. – Blueberry Voyage LTD"},
}

// EmailTemplates are wrapped in the letterhead before sending
var EmailTemplates = []MessageTemplate{
	{ID: 1, Name: "First Debt Notice", Subject: "URGENT: Outstanding Debt Notice", Text: "Dear {Name},\n\nWe are reaching out to inform you that your debt with {Client Name} remains unsettled. Kindly contact us as soon as possible to discuss a repayment plan and avoid escalation.\n\nWarm regards,\nBlueberry Voyage LTD"},
	{ID: 2, Name: "Did Not Pick Calls", Subject: "We Tried Calling You – Urgent Matter", Text: "Dear {Name},\n\nWe attempted to reach you regarding your outstanding debt with {Client Name}, but we couldn’t get through. Please return our call at your earliest convenience to discuss your repayment options.\n\nWarm regards,\nBlueberry Voyage LTD"},
	{ID: 3, Name: "Repeatedly Ignoring Calls", Subject: "Repeated Unanswered Calls – Immediate Action Required", Text: "Dear {Name},\n\nDespite multiple attempts to contact you regarding your debt with {Client Name}, we have not received any response. We strongly urge you to return our calls to avoid further action.\n\nWarm regards,\nBlueberry Voyage LTD"},
	{ID: 4, Name: "Final Notice Before Legal Action", Subject: "FINAL NOTICE: Legal Action May Follow", Text: "Dear {Name},\n\nYour outstanding debt with {Client Name} remains unpaid despite our previous attempts to reach you. Failure to respond or make a payment arrangement may result in further action, including legal proceedings.\n\nPlease contact us immediately to resolve this matter.\n\nWarm regards,\nBlueberry Voyage LTD"},
	{ID: 5, Name: "Demand Letter Issued", Subject: "Demand Letter Issued – Immediate Response Required", Text: "Dear {Name},\n\nA formal demand letter has been issued regarding your outstanding debt with {Client Name}. Please comply with the instructions in the letter to avoid further escalation.\n\nWarm regards,\nBlueberry Voyage LTD"},
	{ID: 6, Name: "No Payment Commitment", Subject: "Lack of Payment Commitment – Immediate Response Needed", Text: "Dear {Name},\n\nDespite our repeated attempts to reach you, we have not received a repayment commitment for your debt with {Client Name}. Please provide an update or arrange for payment immediately.\n\nWarm regards,\nBlueberry Voyage LTD"},
	{ID: 7, Name: "PTP Reminder – 2 Days to Due Date", Subject: "Reminder: Payment Due in 2 Days", Text: "Dear {Name},\n\nThis is a friendly reminder that your agreed payment of KES {Amount} to {Client Name} is due in two days. Please ensure timely payment and share proof once completed.\n\nWarm regards,\nBlueberry Voyage LTD"},
	{ID: 8, Name: "PTP Reminder – 1 Day to Due Date", Subject: "URGENT: Payment Due Tomorrow", Text: "Dear {Name},\n\nAs agreed, your payment of KES {Amount} to {Client Name} is due tomorrow. Kindly prioritize this and share proof of payment promptly.\n\nWarm regards,\nBlueberry Voyage LTD"},
	{ID: 9, Name: "PTP Reminder – Due Today", Subject: "ACTION REQUIRED: Payment Due Today", Text: "Dear {Name},\n\nWe are reminding you that your payment of KES {Amount} to {Client Name} is due today. Kindly make the payment immediately and share proof with us.\n\nWarm regards,\nBlueberry Voyage LTD"},
	{ID: 10, Name: "PTP Reminder – Overdue by 2 Days", Subject: "Overdue Payment – Immediate Action Required", Text: "Dear {Name},\n\nYour payment of KES {Amount} to {Client Name} was due two days ago, and we have not received confirmation of payment. Please make the payment as soon as possible to avoid further action.\n\nWarm regards,\nBlueberry Voyage LTD"},
	{ID: 11, Name: "Request for Payment Proof", Subject: "Payment Proof Request", Text: "Dear {Name},\n\nWe kindly request proof of payment for your recent transaction with {Client Name}. This will allow us to update your account accordingly.\n\nPlease share the proof at your earliest convenience.\n\nWarm regards,\nBlueberry Voyage LTD"},
	{ID: 12, Name: "Payment Not Received – Urgent Reminder", Subject: "URGENT: Payment Not Received", Text: "Dear {Name},\n\nWe have not received payment for your outstanding debt with {Client Name}, despite previous reminders. Please make the payment as soon as possible to prevent further escalation.\n\nWarm regards,\nBlueberry Voyage LTD"},
	{ID: 13, Name: "Payment Confirmation", Subject: "Payment Received – Thank You", Text: "Dear {Name},\n\nWe acknowledge receipt of your payment. Thank you for your prompt action in settling your dues with {Client Name}.\n\nWarm regards,\nBlueberry Voyage LTD"},
	{ID: 14, Name: "Legal Escalation Notice", Subject: "Legal Action Pending – Immediate Response Needed", Text: "Dear {Name},\n\nSince your debt with {Client Name} remains unpaid, we are preparing to escalate the matter legally. We urge you to settle the debt immediately to avoid further complications.\n\nWarm regards,\nBlueberry Voyage LTD"},
	{ID: 15, Name: "Blocked Calls", Subject: "We Notice You Have Blocked Our Calls", Text: "Dear {Name},\n\nWe noticed that you have blocked our calls regarding your debt with {Client Name}. We urge you to engage with us to avoid unnecessary escalation.\n\nWarm regards,\nBlueberry Voyage LTD"},
}
