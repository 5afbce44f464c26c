package service

import (
	"strings"

	"github.com/noah-isme/discipulus-api/internal/models"
	appErrors "github.com/noah-isme/discipulus-api/pkg/errors"
)

// canAdvance reports whether Next is allowed from the draft's current step.
func canAdvance(d *models.BookingDraft) bool {
	switch d.Step {
	case models.StepSchedule:
		return d.Date != "" && d.Time != ""
	case models.StepDetails:
		return true
	default:
		return false
	}
}

// canSubmit reports whether the draft is at the payment step with a complete selection.
func canSubmit(d *models.BookingDraft) bool {
	return d.Step == models.StepPayment && d.Date != "" && d.Time != "" && d.PaymentMethod.Valid()
}

func advanceStep(d *models.BookingDraft) error {
	if d.Step == models.StepPayment {
		return appErrors.Clone(appErrors.ErrInvalidStep, "payment is the last step, submit the booking instead")
	}
	if !canAdvance(d) {
		return appErrors.Clone(appErrors.ErrInvalidStep, "select a date and a time before continuing")
	}
	d.Step++
	return nil
}

func retreatStep(d *models.BookingDraft) {
	if d.Step > models.StepSchedule {
		d.Step--
	}
}

// applyPatch copies the patch onto the draft. Each field belongs to one step
// and can only be edited while the wizard is on it.
func applyPatch(d *models.BookingDraft, patch models.BookingDraftPatch) error {
	onStep := func(step models.BookingStep, field string) error {
		if d.Step != step {
			return appErrors.Clone(appErrors.ErrInvalidStep, field+" can only be changed on step "+stepName(step))
		}
		return nil
	}

	if patch.Date != nil || patch.Time != nil {
		if err := onStep(models.StepSchedule, "date and time"); err != nil {
			return err
		}
		if patch.Date != nil {
			d.Date = strings.TrimSpace(*patch.Date)
		}
		if patch.Time != nil {
			d.Time = strings.TrimSpace(*patch.Time)
		}
	}

	if patch.Duration != nil || patch.Notes != nil || patch.Subject != nil {
		if err := onStep(models.StepDetails, "lesson details"); err != nil {
			return err
		}
		if patch.Duration != nil {
			if !models.IsLessonDuration(*patch.Duration) {
				return appErrors.Clone(appErrors.ErrValidation, "duration must be 30, 60, 90 or 120 minutes")
			}
			d.Duration = *patch.Duration
		}
		if patch.Notes != nil {
			d.Notes = strings.TrimSpace(*patch.Notes)
		}
		if patch.Subject != nil {
			d.Subject = strings.TrimSpace(*patch.Subject)
		}
	}

	if patch.PaymentMethod != nil {
		if err := onStep(models.StepPayment, "payment method"); err != nil {
			return err
		}
		if !patch.PaymentMethod.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, "payment method must be credit or pix")
		}
		d.PaymentMethod = *patch.PaymentMethod
	}

	d.Price = LessonPrice(d.HourlyRate, d.Duration)
	return nil
}

func stepName(step models.BookingStep) string {
	switch step {
	case models.StepSchedule:
		return "1 (schedule)"
	case models.StepDetails:
		return "2 (details)"
	default:
		return "3 (payment)"
	}
}
