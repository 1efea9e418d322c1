package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"safisha/internal/core"
	"safisha/internal/wizard"
)

// BackToken typed at any prompt returns to the previous step.
const BackToken = "<"

var errBack = errors.New("back")

// Prompter reads answers line by line from a terminal or script.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Ask prints label and returns the trimmed answer, or def for an empty
// line. It returns io.EOF when input ends.
func (p *Prompter) Ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	answer := strings.TrimSpace(p.in.Text())
	if answer == BackToken {
		return "", errBack
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Choose asks for one of options, by position (1-based) or by name.
func (p *Prompter) Choose(label string, options []string, def string) (string, error) {
	for i, o := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, o)
	}
	answer, err := p.Ask(label, def)
	if err != nil {
		return "", err
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
		return options[n-1], nil
	}
	return answer, nil
}

type step[T wizard.Validator] func(p *Prompter, draft *T) error

// stepOf maps a record's JSON field names to the wizard step that asks
// for them. Fields not listed belong to the last step.
type stepOf map[string]int

// first returns the earliest step owning one of fields.
func (s stepOf) first(fields []string) int {
	target := wizard.LastStep
	for _, f := range fields {
		if n, ok := s[f]; ok && n < target {
			target = n
		}
	}
	return target
}

// run drives w through steps, one per wizard step, then submits. After a
// validation failure the wizard returns to the earliest step holding a
// failing field, keeping the answers given so far.
func run[T wizard.Validator](ctx context.Context, p *Prompter, w *wizard.Wizard[T], steps [wizard.LastStep]step[T], owners stepOf, create func(context.Context, T) (T, error)) (T, error) {
	var zero T
	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		fmt.Fprintf(p.out, "\nStep %d of %d (type %s to go back)\n", w.Step(), wizard.LastStep, BackToken)

		var stepErr error
		w.Edit(func(draft *T) { stepErr = steps[w.Step()-1](p, draft) })
		switch {
		case errors.Is(stepErr, errBack):
			w.Back()
			continue
		case stepErr != nil:
			return zero, stepErr
		case !w.IsLast():
			w.Next()
			continue
		}

		created, err := w.Submit(ctx, create)
		if errors.Is(err, core.ErrValidation) {
			target := owners.first(core.InvalidFields(err))
			fmt.Fprintf(p.out, "Please correct: %v (step %d)\n", err, target)
			for w.Step() > target {
				w.Back()
			}
			continue
		}
		return created, err
	}
}

// RunLeadWizard collects a lead in three steps: asset type, asset details,
// customer contact.
func RunLeadWizard(ctx context.Context, p *Prompter, create func(context.Context, core.Lead) (core.Lead, error)) (core.Lead, error) {
	w := wizard.New(func() core.Lead { return core.Lead{Date: core.Today()} })
	steps := [wizard.LastStep]step[core.Lead]{
		func(p *Prompter, l *core.Lead) error {
			v, err := p.Choose("Asset type", categories(), string(core.CategoryVehicle))
			l.AssetType = core.Category(v)
			return err
		},
		func(p *Prompter, l *core.Lead) (err error) {
			switch l.AssetType {
			case core.CategoryMotorbike:
				l.MotorbikeModel, err = p.Ask("Motorbike model", l.MotorbikeModel)
			case core.CategoryCarpet:
				if l.CarpetType, err = p.Ask("Carpet type", l.CarpetType); err != nil {
					return err
				}
				l.CarpetSize, err = p.Choose("Carpet size", core.CarpetSizes, l.CarpetSize)
			default:
				if l.VehicleModel, err = p.Ask("Vehicle model", l.VehicleModel); err != nil {
					return err
				}
				l.RegistrationNumber, err = p.Ask("Registration number", l.RegistrationNumber)
			}
			return err
		},
		func(p *Prompter, l *core.Lead) (err error) {
			if l.CustomerName, err = p.Ask("Customer name", l.CustomerName); err != nil {
				return err
			}
			l.CustomerPhone, err = p.Ask("Customer phone", l.CustomerPhone)
			return err
		},
	}
	return run(ctx, p, w, steps, leadSteps, create)
}

var leadSteps = stepOf{
	"assetType":          1,
	"vehicleModel":       2,
	"registrationNumber": 2,
	"motorbikeModel":     2,
	"carpetType":         2,
	"carpetSize":         2,
	"customerName":       3,
	"customerPhone":      3,
}

// RunSaleWizard records a sale in three steps: category and employee,
// service details, payment.
func RunSaleWizard(ctx context.Context, p *Prompter, create func(context.Context, core.Sale) (core.Sale, error)) (core.Sale, error) {
	w := wizard.New(func() core.Sale { return core.Sale{Date: core.Today()} })
	steps := [wizard.LastStep]step[core.Sale]{
		func(p *Prompter, s *core.Sale) error {
			v, err := p.Choose("Category", categories(), string(core.CategoryVehicle))
			if err != nil {
				return err
			}
			s.Category = core.Category(v)
			s.Employee, err = p.Ask("Employee", s.Employee)
			return err
		},
		func(p *Prompter, s *core.Sale) (err error) {
			options := core.ServiceTypes(s.Category)
			switch s.Category {
			case core.CategoryMotorbike:
				if s.MotorbikeServiceType, err = p.Choose("Service", options, s.MotorbikeServiceType); err != nil {
					return err
				}
				var n string
				n, err = p.Ask("Number of motorbikes", "1")
				s.NumberOfMotorbikes = core.Decimal(n)
			case core.CategoryCarpet:
				if s.CarpetServiceType, err = p.Choose("Service", options, s.CarpetServiceType); err != nil {
					return err
				}
				s.Size, err = p.Choose("Size", core.CarpetSizes, s.Size)
			default:
				if s.VehicleServiceType, err = p.Choose("Service", options, s.VehicleServiceType); err != nil {
					return err
				}
				s.VehicleModel, err = p.Ask("Vehicle model", s.VehicleModel)
			}
			return err
		},
		func(p *Prompter, s *core.Sale) error {
			amount, err := p.Ask("Amount (KSh)", s.Amount.String())
			if err != nil {
				return err
			}
			s.Amount = core.Decimal(amount)
			if s.PaymentMethod, err = p.Choose("Payment method", core.PaymentMethods, "Cash"); err != nil {
				return err
			}
			s.Date, err = p.Ask("Date", s.Date)
			return err
		},
	}
	return run(ctx, p, w, steps, saleSteps, create)
}

var saleSteps = stepOf{
	"category":             1,
	"employee":             1,
	"serviceType":          2,
	"vehicleServiceType":   2,
	"motorbikeServiceType": 2,
	"carpetServiceType":    2,
	"vehicleModel":         2,
	"numberOfMotorbikes":   2,
	"size":                 2,
	"amount":               3,
	"paymentMethod":        3,
	"date":                 3,
}

func categories() []string {
	return []string{string(core.CategoryVehicle), string(core.CategoryMotorbike), string(core.CategoryCarpet)}
}
