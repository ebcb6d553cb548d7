package renderer

import (
	"fmt"
	"strconv"

	"github.com/Rhymond/go-money"
	"github.com/etnz/payments"
)

// Summary is the data of the summary report.
type Summary struct {
	Currency  string // empty when amounts are printed as plain decimals.
	Clients   []ClientRow
	Locked    []uint16
	Available string
	Held      string
	Total     string
	Stats     payments.Stats
}

// ClientRow is one line of the clients table.
type ClientRow struct {
	Client    uint16
	Available string
	Held      string
	Total     string
	Locked    bool
}

// NewSummary builds the summary of a run. States are reported by client id.
//
// When currency is set, amounts are formatted as money in that currency, rounded to its
// number of fractional digits.
func NewSummary(states []payments.ClientState, stats payments.Stats, currency string) (*Summary, error) {
	format := payments.Amount.String
	if currency != "" {
		cur := money.GetCurrency(currency)
		if cur == nil {
			return nil, fmt.Errorf("unknown currency: %q", currency)
		}
		format = func(a payments.Amount) string { return formatMoney(a, cur) }
	}

	sorted := make([]payments.ClientState, len(states))
	copy(sorted, states)
	payments.SortByClient(sorted)

	s := &Summary{Currency: currency, Stats: stats}
	var available, held, total payments.Amount
	for _, st := range sorted {
		s.Clients = append(s.Clients, ClientRow{
			Client:    st.Client,
			Available: format(st.Available),
			Held:      format(st.Held),
			Total:     format(st.Total),
			Locked:    st.Locked,
		})
		if st.Locked {
			s.Locked = append(s.Locked, st.Client)
		}
		available = available.Add(st.Available)
		held = held.Add(st.Held)
		total = total.Add(st.Total)
	}
	s.Available, s.Held, s.Total = format(available), format(held), format(total)
	return s, nil
}

func formatMoney(a payments.Amount, cur *money.Currency) string {
	minor := a.Decimal().Shift(int32(cur.Fraction)).RoundBank(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

// Title returns the report title.
func (s *Summary) Title() string {
	if s.Currency == "" {
		return "Payments Summary"
	}
	return "Payments Summary (" + s.Currency + ")"
}

// LockedCount returns the number of locked clients as text.
func (s *Summary) LockedCount() string { return strconv.Itoa(len(s.Locked)) }

// RenderSummary renders the summary report to markdown.
func RenderSummary(s *Summary) (string, error) {
	partials := map[string]string{
		"summary_totals":  "summary_totals.md",
		"summary_clients": "summary_clients.md",
		"summary_locked":  "summary_locked.md",
	}
	return renderTemplate("summary", "summary.md", partials, s)
}
