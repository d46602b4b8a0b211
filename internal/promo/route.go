package promo

// ScreenForCategory maps a template category to the in-app screen the
// notification opens. Total over any category string: unrecognized
// categories fall back to "home".
func ScreenForCategory(category string) string {
	switch category {
	case CategoryTravelTip, CategorySafety, CategoryEcoFriendly:
		return "home"
	case CategoryFeatureHighlight, CategoryVoiceChat:
		return "travel_buddy"
	case CategoryDiscount, CategoryCashback:
		return "tickets"
	case CategoryReminder, CategoryAdvanceBooking:
		return "bookings"
	case CategoryNewRoutes:
		return "map"
	default:
		return "home"
	}
}
