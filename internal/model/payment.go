package model

import "strconv"

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentPaid || s == PaymentPending
}

// Payment is one monthly due for a flat. PaymentDate is empty while the
// payment is pending.
type Payment struct {
	ID           string        `json:"id"`
	FlatNumber   string        `json:"flatNumber"`
	ResidentName string        `json:"residentName"`
	Amount       float64       `json:"amount"`
	DueDate      string        `json:"dueDate"`
	PaymentDate  string        `json:"paymentDate"`
	Status       PaymentStatus `json:"status"`
	Month        string        `json:"month"` // YYYY-MM
	Year         string        `json:"year"`
}

func (p Payment) Field(name string) (string, bool) {
	switch name {
	case "id":
		return p.ID, true
	case "flatNumber":
		return p.FlatNumber, true
	case "residentName":
		return p.ResidentName, true
	case "amount":
		return strconv.FormatFloat(p.Amount, 'f', -1, 64), true
	case "dueDate":
		return p.DueDate, true
	case "paymentDate":
		return p.PaymentDate, true
	case "status":
		return string(p.Status), true
	case "month":
		return p.Month, true
	case "year":
		return p.Year, true
	}
	return "", false
}

// SetField parses amount leniently: anything that is not a number reads as 0.
func (p *Payment) SetField(name, value string) {
	switch name {
	case "id":
		p.ID = value
	case "flatNumber":
		p.FlatNumber = value
	case "residentName":
		p.ResidentName = value
	case "amount":
		amount, err := strconv.ParseFloat(value, 64)
		if err != nil {
			amount = 0
		}
		p.Amount = amount
	case "dueDate":
		p.DueDate = value
	case "paymentDate":
		p.PaymentDate = value
	case "status":
		p.Status = PaymentStatus(value)
	case "month":
		p.Month = value
	case "year":
		p.Year = value
	}
}
