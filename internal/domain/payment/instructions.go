// Package payment maps a payment method and fee to human-readable
// remittance instructions for non-gateway methods.
package payment

import "fmt"

// Instructions is the structured remittance payload returned to the payer.
type Instructions struct {
	Method string
	Title  string
	Amount string   // formatted dollar amount, e.g. "$350.00"
	Steps  []string // ordered instruction lines
	PayTo  string   // mailing address or recipient handle
	Memo   string   // memo/reference line the payer must include
}

// Remittance destinations for manual payment methods.
const (
	checkPayee     = "Alhuda SPARK"
	checkMailingTo = "Alhuda SPARK, Attn: Registrations, 248 East Mountain St, Worcester, MA 01606"
	zelleRecipient = "payments@alhudaspark.org"
	venmoRecipient = "@AlhudaSPARK"
)

// FormatAmount renders a cent amount as a dollar string.
// PRE: cents >= 0
// POST: Returns e.g. "$350.00" for 35000
func FormatAmount(cents int) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

// Resolve maps a payment method and fee to rendered instructions.
// Pure function: the same inputs always yield the same payload.
// PRE: feeCents >= 0; referenceID and payerName are human-traceable
// POST: Returns instructions for check/zelle/venmo; nil for gateway or
// unknown methods (the caller has already redirected the payer externally)
func Resolve(method string, feeCents int, referenceID, payerName string) *Instructions {
	amount := FormatAmount(feeCents)
	memo := fmt.Sprintf("%s - %s", referenceID, payerName)

	switch method {
	case "check":
		return &Instructions{
			Method: "check",
			Title:  "Pay by Check",
			Amount: amount,
			Steps: []string{
				fmt.Sprintf("Make a check payable to %q for %s.", checkPayee, amount),
				fmt.Sprintf("Write %q on the memo line.", memo),
				"Mail the check to the address below within 7 days to hold your spot.",
			},
			PayTo: checkMailingTo,
			Memo:  memo,
		}
	case "zelle":
		return &Instructions{
			Method: "zelle",
			Title:  "Pay with Zelle",
			Amount: amount,
			Steps: []string{
				fmt.Sprintf("Send %s via Zelle to the recipient below.", amount),
				fmt.Sprintf("Include %q in the payment note.", memo),
				"Your registration is confirmed once the transfer is received.",
			},
			PayTo: zelleRecipient,
			Memo:  memo,
		}
	case "venmo":
		return &Instructions{
			Method: "venmo",
			Title:  "Pay with Venmo",
			Amount: amount,
			Steps: []string{
				fmt.Sprintf("Send %s via Venmo to the handle below.", amount),
				fmt.Sprintf("Include %q in the payment note.", memo),
				"Your registration is confirmed once the transfer is received.",
			},
			PayTo: venmoRecipient,
			Memo:  memo,
		}
	default:
		return nil
	}
}
