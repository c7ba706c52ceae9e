package booking

import (
	"math"
	"time"

	"github.com/homestay-booking/backend/internal/storage/models"
)

// Quote is the total price calculation: nightly rate times stay length, an
// extra-guest surcharge for guests above the place's occupancy limit, and an
// optional percentage voucher discount. Pure: same inputs, same output.
//
// A nil voucher, or one that is not active on the given day, contributes no
// discount. The voucher usage counter is not touched here; that is a side
// effect of booking creation only.
func Quote(place *models.Place, start, end time.Time, guestCount int, extraGuestRate float64, voucher *models.Voucher, today time.Time) float64 {
	nights := int(end.Sub(start).Hours() / 24)

	price := place.PricePerNight * float64(nights)

	if guestCount > place.MaxGuests {
		price += float64(guestCount-place.MaxGuests) * extraGuestRate * float64(nights)
	}

	if voucher != nil && voucher.IsActive(today) {
		price -= price * voucher.DiscountPercent / 100
	}

	return roundPrice(price)
}

// Commission is the platform's cut of a booking total.
func Commission(total, rate float64) float64 {
	return roundPrice(total * rate)
}

// roundPrice rounds to the currency's minor-unit precision (two decimals).
func roundPrice(p float64) float64 {
	return math.Round(p*100) / 100
}
