package model

// Room is a schedulable object returned by the provider's room listing.
type Room struct {
	ID   string
	Name string
}
