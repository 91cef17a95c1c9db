package mail

import (
	"fmt"
	"strings"

	"github.com/jhoicas/onboarding-api/internal/domain/entity"
)

// message asunto y cuerpo en texto plano.
type message struct {
	To      string
	Subject string
	Body    string
}

func otpMessage(email, code string) message {
	return message{
		To:      email,
		Subject: "Your verification code",
		Body: fmt.Sprintf("Your verification code is %s.\n\n"+
			"It expires in 10 minutes. If you did not request it, ignore this email.\n", code),
	}
}

func submissionMessage(rec *entity.OnboardingRecord) message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", rec.ContactName())
	fmt.Fprintf(&b, "We received the onboarding request for %s (reference %s).\n\n", rec.CompanyName, rec.ID)
	b.WriteString("Quote summary (INR, per month, GST excluded):\n")
	for _, line := range rec.Pricing.Breakdown {
		fmt.Fprintf(&b, "  %-12s %s\n", line.Service, line.Price.StringFixed(0))
	}
	fmt.Fprintf(&b, "  Base price   %s\n", rec.Pricing.BasePrice.StringFixed(0))
	fmt.Fprintf(&b, "  Discount     %s (%s%%)\n", rec.Pricing.Discount.StringFixed(0), rec.Pricing.DiscountPercent.String())
	fmt.Fprintf(&b, "  Final price  %s\n", rec.Pricing.FinalPrice.StringFixed(0))
	fmt.Fprintf(&b, "  Plan total   %s for %d months + GST %s = %s\n\n",
		rec.Pricing.PlanTotal.StringFixed(0), rec.Pricing.Months,
		rec.Pricing.GSTAmount.StringFixed(0), rec.Pricing.TotalWithGST.StringFixed(0))
	b.WriteString("Our team will review it and get back to you.\n")
	return message{To: rec.CompanyEmail, Subject: "Onboarding request received", Body: b.String()}
}

func decisionMessage(rec *entity.OnboardingRecord) message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", rec.ContactName())
	switch rec.Status {
	case entity.StatusApproved:
		fmt.Fprintf(&b, "The onboarding request for %s has been approved.\n", rec.CompanyName)
	case entity.StatusRejected:
		fmt.Fprintf(&b, "The onboarding request for %s has been rejected.\n", rec.CompanyName)
		fmt.Fprintf(&b, "Reason: %s\n", rec.RejectionReason)
		if rec.RejectionDetails != "" {
			fmt.Fprintf(&b, "Details: %s\n", rec.RejectionDetails)
		}
	default:
		fmt.Fprintf(&b, "The onboarding request for %s is now %s.\n", rec.CompanyName, rec.Status)
	}
	if rec.AdminNotes != "" {
		fmt.Fprintf(&b, "\nNotes: %s\n", rec.AdminNotes)
	}
	return message{To: rec.CompanyEmail, Subject: "Onboarding request " + string(rec.Status), Body: b.String()}
}
