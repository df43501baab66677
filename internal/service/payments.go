package service

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/sakif/township/internal/apperror"
	"github.com/sakif/township/internal/model"
	"github.com/sakif/township/internal/seed"
)

var (
	monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// PaymentService manages maintenance dues.
type PaymentService struct {
	store  Store
	clock  Clock
	logger *slog.Logger
}

func NewPaymentService(store Store, clock Clock, logger *slog.Logger) *PaymentService {
	return &PaymentService{store: store, clock: clock, logger: logger}
}

// PaymentFilter narrows List. Search matches flat number or resident name,
// case-insensitively. An empty or "all" Status matches every payment.
type PaymentFilter struct {
	Search string
	Status string
}

func (s *PaymentService) List(f PaymentFilter) []model.Payment {
	out := []model.Payment{}
	for _, p := range s.store.Snapshot().Payments {
		if !matches(f.Status, string(p.Status)) {
			continue
		}
		if f.Search != "" && !containsFold(p.FlatNumber, f.Search) && !containsFold(p.ResidentName, f.Search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ListForFlat returns a flat's payment history.
func (s *PaymentService) ListForFlat(flat string) []model.Payment {
	out := []model.Payment{}
	for _, p := range s.store.Snapshot().Payments {
		if p.FlatNumber == flat {
			out = append(out, p)
		}
	}
	return out
}

// RecordInput is a payment received at the desk.
type RecordInput struct {
	FlatNumber  string  `json:"flatNumber"`
	Amount      float64 `json:"amount"`
	Month       string  `json:"month"`
	PaymentDate string  `json:"paymentDate"`
}

// Record adds an already-paid payment for a resident's flat. Month defaults
// to the current month, Amount to the monthly due and PaymentDate to today.
func (s *PaymentService) Record(ctx context.Context, in RecordInput) (model.Payment, error) {
	if in.FlatNumber == "" {
		return model.Payment{}, apperror.ValidationFailed("flatNumber", "flat number is required")
	}
	if in.Month == "" {
		in.Month = s.clock.month()
	}
	if !monthPattern.MatchString(in.Month) {
		return model.Payment{}, apperror.ValidationFailed("month", "month must look like YYYY-MM")
	}
	if in.PaymentDate == "" {
		in.PaymentDate = s.clock.today()
	}
	if !datePattern.MatchString(in.PaymentDate) {
		return model.Payment{}, apperror.ValidationFailed("paymentDate", "payment date must look like YYYY-MM-DD")
	}
	if in.Amount == 0 {
		in.Amount = seed.MonthlyDue
	}
	if in.Amount < 0 {
		return model.Payment{}, apperror.ValidationFailed("amount", "amount must be positive")
	}

	var p model.Payment
	err := s.store.Mutate(ctx, func(d *model.Dataset) error {
		idx := d.FindUserByFlat(in.FlatNumber)
		if idx < 0 {
			return apperror.NotFound("resident", in.FlatNumber)
		}
		p = model.Payment{
			ID:           newID(paymentPrefix),
			FlatNumber:   in.FlatNumber,
			ResidentName: d.Users[idx].Name,
			Amount:       in.Amount,
			DueDate:      in.Month + "-05",
			PaymentDate:  in.PaymentDate,
			Status:       model.PaymentPaid,
			Month:        in.Month,
			Year:         in.Month[:4],
		}
		d.Payments = append(d.Payments, p)
		return nil
	})
	if err != nil {
		return model.Payment{}, err
	}

	s.logger.Info("payment recorded",
		slog.String("id", p.ID),
		slog.String("flatNumber", p.FlatNumber),
		slog.Float64("amount", p.Amount),
	)
	return p, nil
}

// MarkPaid settles a pending payment today. Marking an already-paid payment
// keeps its original payment date.
func (s *PaymentService) MarkPaid(ctx context.Context, id string) (model.Payment, error) {
	var p model.Payment
	err := s.store.Mutate(ctx, func(d *model.Dataset) error {
		for i := range d.Payments {
			if d.Payments[i].ID != id {
				continue
			}
			if d.Payments[i].Status != model.PaymentPaid {
				d.Payments[i].Status = model.PaymentPaid
				d.Payments[i].PaymentDate = s.clock.today()
			}
			p = d.Payments[i]
			return nil
		}
		return apperror.NotFound("payment", id)
	})
	if err != nil {
		return model.Payment{}, err
	}

	s.logger.Info("payment marked paid", slog.String("id", id))
	return p, nil
}
