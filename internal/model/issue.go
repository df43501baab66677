package model

type IssueStatus string

const (
	IssueOpen       IssueStatus = "open"
	IssueInProgress IssueStatus = "in-progress"
	IssueResolved   IssueStatus = "resolved"
)

func (s IssueStatus) Valid() bool {
	return s == IssueOpen || s == IssueInProgress || s == IssueResolved
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Issue is a maintenance request or complaint raised for a flat.
type Issue struct {
	ID           string      `json:"id"`
	FlatNumber   string      `json:"flatNumber"`
	ResidentName string      `json:"residentName"`
	IssueType    string      `json:"issueType"`
	Description  string      `json:"description"`
	Status       IssueStatus `json:"status"`
	Priority     Priority    `json:"priority"`
	CreatedDate  string      `json:"createdDate"`
	UpdatedDate  string      `json:"updatedDate"`
	AdminNotes   string      `json:"adminNotes"`
}

func (i Issue) Field(name string) (string, bool) {
	switch name {
	case "id":
		return i.ID, true
	case "flatNumber":
		return i.FlatNumber, true
	case "residentName":
		return i.ResidentName, true
	case "issueType":
		return i.IssueType, true
	case "description":
		return i.Description, true
	case "status":
		return string(i.Status), true
	case "priority":
		return string(i.Priority), true
	case "createdDate":
		return i.CreatedDate, true
	case "updatedDate":
		return i.UpdatedDate, true
	case "adminNotes":
		return i.AdminNotes, true
	}
	return "", false
}

func (i *Issue) SetField(name, value string) {
	switch name {
	case "id":
		i.ID = value
	case "flatNumber":
		i.FlatNumber = value
	case "residentName":
		i.ResidentName = value
	case "issueType":
		i.IssueType = value
	case "description":
		i.Description = value
	case "status":
		i.Status = IssueStatus(value)
	case "priority":
		i.Priority = Priority(value)
	case "createdDate":
		i.CreatedDate = value
	case "updatedDate":
		i.UpdatedDate = value
	case "adminNotes":
		i.AdminNotes = value
	}
}
