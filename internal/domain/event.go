package domain

import "time"

type Event struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Venue          string    `json:"venue"`
	StartsAt       time.Time `json:"starts_at"`
	DiscountBudget int64     `json:"discount_budget"`
	DiscountSpent  int64     `json:"discount_spent"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RemainingBudget reports how much discount the event can still give away.
// ok is false when the event has no budget cap.
func (e *Event) RemainingBudget() (remaining int64, ok bool) {
	if e.DiscountBudget <= 0 {
		return 0, false
	}
	remaining = e.DiscountBudget - e.DiscountSpent
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

type Pass struct {
	ID        string `json:"id"`
	EventID   string `json:"event_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Capacity  int    `json:"capacity"`
	Sold      int    `json:"sold"`
}

func (p *Pass) Available() int {
	if p.Sold >= p.Capacity {
		return 0
	}
	return p.Capacity - p.Sold
}
