// README: Plain-text receipt for an archived trip.
package history

import (
	"fmt"
	"strings"

	"privatehire/internal/modules/fleet"
	"privatehire/internal/modules/pricing"
	"privatehire/internal/types"
)

// Receipt renders rec for the signed-in passenger. The output is cosmetic and not parsed.
func Receipt(rec Record, sess types.Session) string {
	var b strings.Builder
	line := func(label, value string) {
		fmt.Fprintf(&b, "%-14s %s\n", label, value)
	}

	fmt.Fprintf(&b, "PrivateHire receipt #%s\n", rec.ReceiptNo)
	fmt.Fprintf(&b, "%s at %s\n\n", rec.ArchivedAt.Format("2 January 2006"), rec.ArchivedAt.Format("15:04"))

	if sess.DisplayName != "" {
		line("Passenger", sess.DisplayName)
	}
	if sess.Email != "" {
		line("Email", sess.Email)
	}
	line("From", rec.PickupName)
	line("To", rec.DestinationName)
	if spec, err := fleet.Lookup(rec.Class); err == nil {
		line("Class", spec.DisplayName)
	}
	line("Vehicle", strings.TrimSpace(rec.Vehicle.Color+" "+rec.Vehicle.Model))
	line("Driver", rec.DriverName)
	line("Distance", pricing.FormatDistance(rec.DistanceMeters))
	line("Payment", rec.PaymentMethod)
	line("Status", string(rec.Status))
	if rec.Rating != nil {
		line("Rating", strings.Repeat("*", *rec.Rating))
	}

	parts := pricing.Split(rec.Fare)
	b.WriteString("\n")
	line("Base fare", pricing.FormatPrice(parts.Base))
	line("Service fee", pricing.FormatPrice(parts.ServiceFee))
	line("Tax", pricing.FormatPrice(parts.Tax))
	line("Total", pricing.FormatPrice(parts.Total))
	return b.String()
}
