package payments

// Stats counts transaction outcomes.
type Stats struct {
	Applied int
	Ignored int
	Invalid int
}

// Add returns the sum of two Stats.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Applied: s.Applied + o.Applied,
		Ignored: s.Ignored + o.Ignored,
		Invalid: s.Invalid + o.Invalid,
	}
}

// Total returns the number of transactions counted.
func (s Stats) Total() int { return s.Applied + s.Ignored + s.Invalid }

func (s *Stats) count(o Outcome) {
	switch o {
	case Applied:
		s.Applied++
	case Ignored:
		s.Ignored++
	case Invalid:
		s.Invalid++
	}
}

// Batch is the final output of one worker.
type Batch struct {
	Worker int
	States []ClientState // every client the worker touched, in no particular order.
	Stats  Stats
	Err    error // set when the worker aborted the run.
}

// Collect drains batches and concatenates their states.
//
// The first batch error is returned and the states are dropped: a run is either
// complete or failed. Collect always drains the channel.
func Collect(batches <-chan Batch) ([]ClientState, Stats, error) {
	var (
		states []ClientState
		stats  Stats
		err    error
	)
	for b := range batches {
		stats = stats.Add(b.Stats)
		if b.Err != nil {
			if err == nil {
				err = b.Err
			}
			continue
		}
		states = append(states, b.States...)
	}
	if err != nil {
		return nil, stats, err
	}
	return states, stats, nil
}
