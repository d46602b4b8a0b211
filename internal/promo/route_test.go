package promo

import "testing"

func TestScreenForCategory(t *testing.T) {
	tests := []struct {
		category string
		want     string
	}{
		{CategoryTravelTip, "home"},
		{CategorySafety, "home"},
		{CategoryEcoFriendly, "home"},
		{CategoryFeatureHighlight, "travel_buddy"},
		{CategoryVoiceChat, "travel_buddy"},
		{CategoryDiscount, "tickets"},
		{CategoryCashback, "tickets"},
		{CategoryReminder, "bookings"},
		{CategoryAdvanceBooking, "bookings"},
		{CategoryNewRoutes, "map"},
		{CategoryQuietHours, "home"}, // not in the table, falls back
		{"some_future_category", "home"},
		{"", "home"},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			if got := ScreenForCategory(tt.category); got != tt.want {
				t.Errorf("ScreenForCategory(%q) = %q, want %q", tt.category, got, tt.want)
			}
		})
	}
}

func TestScreenForCategory_TotalOverCatalog(t *testing.T) {
	for _, tmpl := range DefaultCatalog() {
		if screen := ScreenForCategory(tmpl.Category); screen == "" {
			t.Errorf("category %s maps to empty screen", tmpl.Category)
		}
	}
}
