package entity

// Player - a seat in a game. ConnID binds the seat to the live connection that holds it.
type Player struct {
	ID     string `json:"id"`
	Mark   string `json:"symbol"`
	ConnID string `json:"-"`
}
