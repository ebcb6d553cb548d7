package payments

import (
	"cmp"
	"slices"
)

// ClientState is the account snapshot of a single client.
//
// Total is maintained per transaction type rather than derived from Available and Held.
type ClientState struct {
	Client    uint16
	Available Amount
	Held      Amount
	Total     Amount
	Locked    bool
}

// NewClientState returns the state of a client that has seen no transaction yet.
func NewClientState(client uint16) ClientState {
	return ClientState{Client: client}
}

// Balanced reports whether Available + Held == Total.
func (s ClientState) Balanced() bool {
	return s.Available.Add(s.Held).Equal(s.Total)
}

// Equal compares two states field by field, amounts by value.
func (s ClientState) Equal(o ClientState) bool {
	return s.Client == o.Client &&
		s.Available.Equal(o.Available) &&
		s.Held.Equal(o.Held) &&
		s.Total.Equal(o.Total) &&
		s.Locked == o.Locked
}

// MarshalJSON implements the json.Marshaler interface for ClientState.
func (s ClientState) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("client", s.Client)
	w.Append("available", s.Available)
	w.Append("held", s.Held)
	w.Append("total", s.Total)
	w.Append("locked", s.Locked)
	return w.MarshalJSON()
}

// SortByClient sorts states by client id, in place.
func SortByClient(states []ClientState) {
	slices.SortFunc(states, func(a, b ClientState) int { return cmp.Compare(a.Client, b.Client) })
}
