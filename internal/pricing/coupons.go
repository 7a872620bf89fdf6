package pricing

import "github.com/motohub/motohub-cart-service/internal/models"

// Coupons returns the currently redeemable coupon codes.
// TODO(TEAM-GROWTH): Source these from the promotions service once it exposes
// a coupon feed; hardcoded until then.
func Coupons() []models.Coupon {
	return []models.Coupon{
		{Code: "SAVE200", Label: "Flat 200 off on any service", AmountOff: 200},
		{Code: "FIRST500", Label: "500 off your first booking", AmountOff: 500},
		{Code: "WASH50", Label: "50 off car wash", AmountOff: 50},
	}
}

// LookupCoupon resolves a coupon code. Unknown or empty codes return nil.
func LookupCoupon(code string) *models.Coupon {
	if code == "" {
		return nil
	}
	for _, c := range Coupons() {
		if c.Code == code {
			return &c
		}
	}
	return nil
}
