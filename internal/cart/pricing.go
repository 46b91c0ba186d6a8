package cart

import (
	"math"
	"strconv"
	"strings"

	"github.com/Vanityerp/Vanity-hub-sub002/internal/domain"
)

// Price derives subtotal, tax, discount and final total from the cart lines,
// the location tax rate and the operator's raw discount input. Pure function:
// recomputed on every read, never cached, so stale totals are impossible.
//
// Discount input accepts only values parseable as a number in [0,100]. Any
// other text sets DiscountError and computes as a zero discount; the raw text
// stays with the session so the field remains editable.
func Price(lines []domain.CartLine, taxRatePercent float64, discountInput string) domain.PricingResult {
	result := domain.PricingResult{TaxRatePercent: taxRatePercent}

	for _, line := range lines {
		result.SubtotalCents += line.UnitPriceCents * int64(line.Quantity)
	}

	result.TaxCents = int64(math.Round(float64(result.SubtotalCents) * taxRatePercent / 100))
	result.TotalCents = result.SubtotalCents + result.TaxCents

	percent, errMsg := parseDiscountPercent(discountInput)
	result.DiscountPercent = percent
	result.DiscountError = errMsg
	result.DiscountCents = int64(math.Round(float64(result.TotalCents) * percent / 100))
	result.FinalTotalCents = result.TotalCents - result.DiscountCents

	return result
}

func parseDiscountPercent(input string) (float64, string) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, ""
	}
	percent, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, "discount must be a number between 0 and 100"
	}
	if percent < 0 || percent > 100 {
		return 0, "discount must be between 0 and 100"
	}
	return percent, ""
}
