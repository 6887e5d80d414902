package models

// Plan describes a pricing plan a student can pay for after booking.
type Plan struct {
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Amount      float64  `json:"amount"`
	Period      string   `json:"period"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Popular     bool     `json:"popular"`
	CTA         string   `json:"cta"`
}

var Plans = []Plan{
	{
		Name:        "Demo Class",
		Price:       "₹200",
		Amount:      200,
		Period:      "one-time",
		Description: "Try before you commit",
		Features: []string{
			"1 hour live session",
			"Experience the teaching style",
			"Ask any questions",
			"No commitment required",
		},
		Popular: false,
		CTA:     "Book Demo",
	},
	{
		Name:        "Week 1 Trial",
		Price:       "₹500",
		Amount:      500,
		Period:      "per day",
		Description: "Daily payments for 7 days",
		Features: []string{
			"7 daily sessions",
			"Python fundamentals",
			"Daily homework & review",
			"Pay daily - low commitment",
			"Full doubt clearing support",
		},
		Popular: true,
		CTA:     "Start Week 1",
	},
	{
		Name:        "Monthly Plan",
		Price:       "₹12,000",
		Amount:      12000,
		Period:      "per month",
		Description: "Best value for serious learners",
		Features: []string{
			"~24 sessions per month",
			"Complete curriculum access",
			"Interview preparation",
			"Real-world projects",
			"Priority support",
			"Career guidance",
		},
		Popular: false,
		CTA:     "Go Monthly",
	},
}

// PlanByName looks up a plan from the fixed catalog.
func PlanByName(name string) (Plan, bool) {
	for _, p := range Plans {
		if p.Name == name {
			return p, true
		}
	}
	return Plan{}, false
}
