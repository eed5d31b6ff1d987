package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"teranga/internal/currency"
)

// Receipt is the downloadable proof of a completed direct payment.
type Receipt struct {
	Reference        string
	PaidAt           time.Time
	PropertyTitle    string
	PropertyLocation string
	CountryName      string
	Amount           decimal.Decimal
	Method           PaymentMethod
	DeveloperName    string
	DeveloperEmail   string
	DeveloperPhone   string
}

// Filename is the suggested download name.
func (r Receipt) Filename() string {
	return "recu-paiement-" + r.Reference + ".txt"
}

// Render writes the plain-text receipt with amounts in code.
func (r Receipt) Render(code currency.Code) string {
	var b strings.Builder
	section := func(title string) {
		fmt.Fprintf(&b, "\n%s\n%s\n", title, strings.Repeat("-", len([]rune(title))))
	}

	b.WriteString("REÇU DE PAIEMENT\n")
	b.WriteString(strings.Repeat("-", 16) + "\n\n")
	fmt.Fprintf(&b, "Transaction ID: %s\n", r.Reference)
	fmt.Fprintf(&b, "Date: %s\n", r.PaidAt.Format("02/01/2006"))

	section("BIEN IMMOBILIER")
	for _, line := range []string{r.PropertyTitle, r.PropertyLocation, r.CountryName} {
		if line != "" {
			b.WriteString(line + "\n")
		}
	}

	section("PAIEMENT")
	fmt.Fprintf(&b, "Montant: %s\n", currency.Format(r.Amount, code))
	fmt.Fprintf(&b, "Méthode: %s\n", r.Method.Label())

	if r.DeveloperName != "" {
		section("PROMOTEUR")
		for _, line := range []string{r.DeveloperName, r.DeveloperEmail, r.DeveloperPhone} {
			if line != "" {
				b.WriteString(line + "\n")
			}
		}
	}
	return b.String()
}
