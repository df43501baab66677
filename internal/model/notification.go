package model

import "strconv"

// RecipientsAll addresses a notification to every resident.
const RecipientsAll = "all"

// Notification is an announcement. Recipients is either RecipientsAll or a
// single flat number.
type Notification struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	SentBy     string `json:"sentBy"`
	SentDate   string `json:"sentDate"`
	Recipients string `json:"recipients"`
	IsRead     bool   `json:"isRead"`
}

// VisibleTo reports whether a resident living in flat should see n.
func (n Notification) VisibleTo(flat string) bool {
	return n.Recipients == RecipientsAll || (flat != "" && n.Recipients == flat)
}

func (n Notification) Field(name string) (string, bool) {
	switch name {
	case "id":
		return n.ID, true
	case "title":
		return n.Title, true
	case "message":
		return n.Message, true
	case "type":
		return n.Type, true
	case "sentBy":
		return n.SentBy, true
	case "sentDate":
		return n.SentDate, true
	case "recipients":
		return n.Recipients, true
	case "isRead":
		return strconv.FormatBool(n.IsRead), true
	}
	return "", false
}

func (n *Notification) SetField(name, value string) {
	switch name {
	case "id":
		n.ID = value
	case "title":
		n.Title = value
	case "message":
		n.Message = value
	case "type":
		n.Type = value
	case "sentBy":
		n.SentBy = value
	case "sentDate":
		n.SentDate = value
	case "recipients":
		n.Recipients = value
	case "isRead":
		n.IsRead = value == "true"
	}
}
