// Package promo implements the promotional notification pass: a fixed
// template catalog, per-user eligibility, random selection with
// personalization, category-to-screen routing and the batch dispatch loop.
package promo

import "math/rand"

// Template categories.
const (
	CategoryTravelTip        = "travel_tip"
	CategoryFeatureHighlight = "feature_highlight"
	CategoryDiscount         = "discount"
	CategoryReminder         = "reminder"
	CategorySafety           = "safety"
	CategoryEcoFriendly      = "eco_friendly"
	CategoryFeedback         = "feedback"
	CategoryAdvanceBooking   = "advance_booking"
	CategoryVoiceChat        = "voice_chat"
	CategoryCashback         = "cashback"
	CategoryQuietHours       = "quiet_hours"
	CategoryNewRoutes        = "new_routes"
)

// Template is one promotional notification. Frequency is a declared
// cadence hint only; the dispatch pass does not enforce it.
type Template struct {
	Category        string
	Title           string
	Body            string
	Frequency       string // "daily" or "weekly", informational
	Personalization bool
}

// Catalog is a fixed, non-empty set of templates.
type Catalog []Template

// Pick selects one template uniformly at random from the full catalog.
// Selection is independent of the cadence hint.
func (c Catalog) Pick(rng *rand.Rand) Template {
	return c[rng.Intn(len(c))]
}

// DefaultCatalog is the static template set, defined at process start.
func DefaultCatalog() Catalog {
	return Catalog{
		{
			Category:  CategoryTravelTip,
			Title:     "Travel Tip",
			Body:      "Avoid peak hours for a more comfortable journey!",
			Frequency: "daily",
		},
		{
			Category:  CategoryFeatureHighlight,
			Title:     "New Feature",
			Body:      "Try our new TravelBuddy feature to find companions for your journey!",
			Frequency: "weekly",
		},
		{
			Category:  CategoryDiscount,
			Title:     "Special Offer",
			Body:      "Get 10% off on your next ticket booking. Limited time offer!",
			Frequency: "weekly",
		},
		{
			Category:  CategoryReminder,
			Title:     "Plan Your Next Trip",
			Body:      "Plan your next trip with discounts on passes!",
			Frequency: "daily",
		},
		{
			Category:  CategorySafety,
			Title:     "Safety First",
			Body:      "Remember to wear your mask and maintain social distancing.",
			Frequency: "daily",
		},
		{
			Category:  CategoryEcoFriendly,
			Title:     "Eco-Friendly Travel",
			Body:      "Choose public transport to reduce your carbon footprint!",
			Frequency: "weekly",
		},
		{
			Category:  CategoryFeedback,
			Title:     "Rate Your Experience",
			Body:      "How was your last journey? Share your feedback with us.",
			Frequency: "weekly",
		},
		{
			Category:  CategoryAdvanceBooking,
			Title:     "Did you know?",
			Body:      "Booking tickets in advance gets you better prices!",
			Frequency: "daily",
		},
		{
			Category:  CategoryVoiceChat,
			Title:     "TravelBuddy Update",
			Body:      "TravelBuddy now supports voice chat. Try it today for safer trips.",
			Frequency: "weekly",
		},
		{
			Category:  CategoryCashback,
			Title:     "SPECIAL OFFER",
			Body:      "15% cashback on monthly passes this week only!",
			Frequency: "weekly",
		},
		{
			Category:        CategoryQuietHours,
			Title:           "Avoid the rush hour!",
			Body:            "Check out quieter bus timings in your area.",
			Frequency:       "daily",
			Personalization: true,
		},
		{
			Category:        CategoryNewRoutes,
			Title:           "New Routes Available",
			Body:            "Your city's new routes are live! Explore and plan your journey.",
			Frequency:       "weekly",
			Personalization: true,
		},
	}
}
