package promo

import "fmt"

// personalizable lists the categories whose titles may carry a greeting.
var personalizable = map[string]bool{
	CategoryReminder: true,
	CategoryFeedback: true,
}

// Personalize returns the title and body to send for a template. The
// title gets a first-name greeting only when the template opts in, the
// user has a first name, and the category allows it; otherwise the
// template passes through unchanged.
func Personalize(t Template, firstName string) (title, body string) {
	title = t.Title
	body = t.Body

	if t.Personalization && firstName != "" && personalizable[t.Category] {
		title = fmt.Sprintf("Hi %s, %s", firstName, t.Title)
	}

	return title, body
}
