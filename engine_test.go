package payments

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// run processes src on workers and returns the states sorted by client.
func run(t *testing.T, workers int, policy MissingAmountPolicy, src iter.Seq2[Transaction, error]) []ClientState {
	t.Helper()
	e := NewEngine(Config{Workers: workers, MissingAmount: policy}, nil)
	states, err := e.Run(src)
	if err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}
	SortByClient(states)
	return states
}

func compareStates(t *testing.T, got, want []ClientState) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d states, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("state %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestEngine_Run_DepositsAndWithdrawals(t *testing.T) {
	src := Records(
		"deposit, 1, 1, 1.0",
		"deposit, 2, 2, 2.0",
		"deposit, 1, 3, 2.0",
		"withdrawal, 1, 4, 1.5",
		"withdrawal, 2, 5, 3.0",
		"deposit, 1, 5,",
	)
	want := []ClientState{
		{Client: 1, Available: amt("1.5"), Total: amt("1.5")},
		{Client: 2, Available: amt("2"), Total: amt("2")},
	}
	for _, workers := range []int{1, 2, 4} {
		t.Run(fmt.Sprintf("%d workers", workers), func(t *testing.T) {
			compareStates(t, run(t, workers, SkipTransaction, src), want)
		})
	}
}

func TestEngine_Run_Chargeback(t *testing.T) {
	src := Records(
		"deposit, 1, 1, 1.0",
		"dispute, 1, 1,",
		"chargeback, 1, 1,",
		"deposit, 1, 2, 10.0",
	)
	compareStates(t, run(t, 3, SkipTransaction, src), []ClientState{{Client: 1, Locked: true}})
}

func TestEngine_Run_Empty(t *testing.T) {
	if states := run(t, 4, SkipTransaction, Transactions()); len(states) != 0 {
		t.Errorf("Run() = %+v, want no state", states)
	}
}

// mixed returns a deterministic sequence touching many clients with every transaction type.
func mixed(clients int, rounds int) []Transaction {
	var txs []Transaction
	id := uint32(0)
	for r := 0; r < rounds; r++ {
		for c := 1; c <= clients; c++ {
			client := uint16(c)
			id++
			dep := id
			txs = append(txs, NewDeposit(client, dep, A(r+c)))
			id++
			txs = append(txs, NewWithdrawal(client, id, MustParseAmount("0.5")))
			switch (r + c) % 4 {
			case 0:
				txs = append(txs, NewDispute(client, dep), NewResolve(client, dep))
			case 1:
				txs = append(txs, NewDispute(client, dep))
			case 2:
				if r == rounds-1 {
					txs = append(txs, NewDispute(client, dep), NewChargeback(client, dep))
				}
			}
		}
	}
	return txs
}

func TestEngine_Run_WorkerCountDoesNotChangeResult(t *testing.T) {
	txs := mixed(50, 20)
	want := run(t, 1, SkipTransaction, Transactions(txs...))
	if len(want) != 50 {
		t.Fatalf("Run() returned %d states, want 50", len(want))
	}
	for _, workers := range []int{2, 3, 7, 16, 64} {
		t.Run(fmt.Sprintf("%d workers", workers), func(t *testing.T) {
			compareStates(t, run(t, workers, SkipTransaction, Transactions(txs...)), want)
		})
	}
}

func TestEngine_Run_KeepsClientOrder(t *testing.T) {
	// Each withdrawal is only possible if the deposit before it was applied first.
	var txs []Transaction
	id := uint32(0)
	for i := 0; i < 200; i++ {
		for c := uint16(1); c <= 10; c++ {
			id++
			txs = append(txs, NewDeposit(c, id, amt("1")))
			id++
			txs = append(txs, NewWithdrawal(c, id, amt("1")))
		}
	}
	e := NewEngine(Config{Workers: 4, QueueSize: 8}, nil)
	batches, err := e.Stream(Transactions(txs...))
	if err != nil {
		t.Fatalf("Stream() returned unexpected error: %v", err)
	}
	states, stats, err := Collect(batches)
	if err != nil {
		t.Fatalf("Collect() returned unexpected error: %v", err)
	}
	if len(states) != 10 {
		t.Errorf("Collect() returned %d states, want 10", len(states))
	}
	if want := (Stats{Applied: len(txs)}); stats != want {
		t.Errorf("Collect() stats = %+v, want %+v", stats, want)
	}
	for _, s := range states {
		if !s.Total.IsZero() {
			t.Errorf("client %d total = %s, want 0", s.Client, s.Total)
		}
	}
}

func TestEngine_Run_ParseError(t *testing.T) {
	e := NewEngine(Config{Workers: 2}, nil)
	states, err := e.Run(Records(
		"deposit, 1, 1, 1.0",
		"transfer, 1, 2, 1.0",
		"deposit, 1, 3, 1.0",
	))
	if states != nil {
		t.Errorf("Run() returned partial states %+v", states)
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Run() error = %v, want *ParseError", err)
	}
	if parseErr.Position != 2 {
		t.Errorf("ParseError.Position = %d, want 2", parseErr.Position)
	}
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Field != "type" {
		t.Errorf("Run() error = %v, want a type *FieldError", err)
	}
}

func TestEngine_Run_ReadError(t *testing.T) {
	disk := errors.New("disk failure")
	e := NewEngine(Config{Workers: 2}, nil)
	_, err := e.Run(DecodeTransactions(&failingReader{data: "type,client,tx,amount\ndeposit,1,1,1\n", err: disk}))

	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("Run() error = %v, want *ReadError", err)
	}
	if !errors.Is(err, disk) {
		t.Errorf("Run() error = %v, want it to wrap %v", err, disk)
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		t.Errorf("Run() error = %v, a read failure is not a *ParseError", err)
	}
}

func TestEngine_Run_MissingAmountPolicies(t *testing.T) {
	src := Records(
		"deposit, 1, 1, 5.0",
		"deposit, 2, 2, 1.0",
		"deposit, 1, 3,",
		"deposit, 1, 4, 3.0",
		"withdrawal, 2, 5, 0.5",
	)
	client2 := ClientState{Client: 2, Available: amt("0.5"), Total: amt("0.5")}

	t.Run("skip-transaction", func(t *testing.T) {
		want := []ClientState{{Client: 1, Available: amt("8"), Total: amt("8")}, client2}
		compareStates(t, run(t, 2, SkipTransaction, src), want)
	})

	t.Run("skip-client", func(t *testing.T) {
		want := []ClientState{{Client: 1, Available: amt("5"), Total: amt("5")}, client2}
		compareStates(t, run(t, 2, SkipClient, src), want)
	})

	t.Run("abort", func(t *testing.T) {
		e := NewEngine(Config{Workers: 2, MissingAmount: AbortRun}, nil)
		states, err := e.Run(src)
		if states != nil {
			t.Errorf("Run() returned partial states %+v", states)
		}
		var missing *MissingAmountError
		if !errors.As(err, &missing) {
			t.Fatalf("Run() error = %v, want *MissingAmountError", err)
		}
		if missing.Client != 1 || missing.Tx != 3 {
			t.Errorf("MissingAmountError = %+v, want client 1 tx 3", missing)
		}
	})
}

func TestEngine_Stream_OneBatchPerWorker(t *testing.T) {
	var txs []Transaction
	for c := uint16(1); c <= 8; c++ {
		txs = append(txs, NewDeposit(c, uint32(c), A(c)))
	}
	e := NewEngine(Config{Workers: 4}, nil)
	batches, err := e.Stream(Transactions(txs...))
	if err != nil {
		t.Fatalf("Stream() returned unexpected error: %v", err)
	}

	seen := make(map[int]bool)
	total := 0
	for b := range batches {
		if b.Err != nil {
			t.Errorf("worker %d returned unexpected error: %v", b.Worker, b.Err)
		}
		if seen[b.Worker] {
			t.Errorf("worker %d reported twice", b.Worker)
		}
		seen[b.Worker] = true
		for _, s := range b.States {
			if int(s.Client)%4 != b.Worker {
				t.Errorf("client %d reported by worker %d", s.Client, b.Worker)
			}
		}
		total += len(b.States)
	}
	if len(seen) != 4 || total != 8 {
		t.Errorf("got %d batches and %d states, want 4 and 8", len(seen), total)
	}
}

func TestEngine_WorkerPanicIsExcluded(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	e := NewEngine(Config{Workers: 2}, zap.New(core))
	e.hook = func(worker int, tx Transaction) {
		if tx.Client == 1 {
			panic("boom")
		}
	}
	// Client 1 appears once, so no transaction is ever sent to its dead worker.
	states, err := e.Run(Records(
		"deposit, 2, 1, 1.0",
		"deposit, 1, 2, 1.0",
		"deposit, 2, 3, 1.0",
		"deposit, 4, 4, 1.0",
	))
	if err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}
	SortByClient(states)
	compareStates(t, states, []ClientState{
		{Client: 2, Available: amt("2"), Total: amt("2")},
		{Client: 4, Available: amt("1"), Total: amt("1")},
	})

	entries := logs.FilterMessage("worker task failed").All()
	if len(entries) != 1 {
		t.Fatalf("got %d worker failure entries, want 1", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["worker"] != int64(1) || ctx["panic"] != "boom" || ctx["error"] != ErrWorkerPanic.Error() {
		t.Errorf("unexpected worker failure entry: %v", ctx)
	}
}

func TestEngine_LogsFailedTransactions(t *testing.T) {
	testCases := []struct {
		policy  MissingAmountPolicy
		wantErr bool
	}{
		{SkipTransaction, false},
		{SkipClient, false},
		{AbortRun, true},
	}
	for _, tc := range testCases {
		t.Run(tc.policy.String(), func(t *testing.T) {
			core, logs := observer.New(zap.WarnLevel)
			e := NewEngine(Config{Workers: 2, MissingAmount: tc.policy}, zap.New(core))
			_, err := e.Run(Records("deposit, 1, 1, 1.0", "withdrawal, 1, 2,"))
			if (err != nil) != tc.wantErr {
				t.Fatalf("Run() error = %v, wantErr %v", err, tc.wantErr)
			}

			entries := logs.FilterMessage("failed to apply transaction").All()
			if len(entries) != 1 {
				t.Fatalf("got %d failed transaction entries, want 1", len(entries))
			}
			entry := entries[0]
			if entry.Level != zapcore.ErrorLevel {
				t.Errorf("entry level = %v, want %v", entry.Level, zapcore.ErrorLevel)
			}
			ctx := entry.ContextMap()
			if ctx["client"] != uint16(1) || ctx["tx"] != uint32(2) || ctx["worker"] != int64(1) {
				t.Errorf("unexpected entry fields: %v", ctx)
			}
			if ctx["policy"] != tc.policy.String() {
				t.Errorf("entry policy = %v, want %v", ctx["policy"], tc.policy)
			}
			if msg, _ := ctx["error"].(string); !strings.Contains(msg, "no amount") {
				t.Errorf("entry error = %q, want the missing amount error", msg)
			}
			if run, _ := ctx["run"].(string); run == "" {
				t.Error("entry has no run id")
			}
		})
	}
}

func TestEngine_LogsAbortedRun(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	e := NewEngine(Config{Workers: 2}, zap.New(core))
	if _, err := e.Run(Records("deposit, 1, 1, 1.0", "deposit, x, 2, 1.0")); err == nil {
		t.Fatal("Run() expected an error, got nil")
	}
	if n := logs.FilterMessage("run aborted").Len(); n != 1 {
		t.Errorf("got %d run aborted entries, want 1", n)
	}
}

func TestDispatch_SendToDeadWorker(t *testing.T) {
	d := &dispatch{aborted: make(chan struct{})}
	w := newWorker(3, DefaultConfig(), zap.NewNop(), d.abort)
	close(w.done)

	err := d.send(w, NewDeposit(7, 9, amt("1")))
	var sendErr *SendError
	if !errors.As(err, &sendErr) {
		t.Fatalf("send() error = %v, want *SendError", err)
	}
	if sendErr.Worker != 3 || sendErr.Client != 7 || sendErr.Tx != 9 {
		t.Errorf("SendError = %+v, want worker 3 client 7 tx 9", sendErr)
	}
	if !errors.Is(err, ErrQueueClosed) {
		t.Errorf("send() error = %v, want it to wrap ErrQueueClosed", err)
	}
}

func TestDispatch_SendAfterAbort(t *testing.T) {
	d := &dispatch{aborted: make(chan struct{})}
	w := newWorker(0, DefaultConfig(), zap.NewNop(), d.abort)
	boom := errors.New("boom")
	d.abort(boom)
	d.abort(errors.New("ignored"))

	if err := d.send(w, NewDispute(1, 1)); !errors.Is(err, boom) {
		t.Errorf("send() error = %v, want %v", err, boom)
	}
}

func TestCollect_FirstErrorWins(t *testing.T) {
	first := errors.New("first")
	batches := make(chan Batch, 3)
	batches <- Batch{Worker: 0, States: []ClientState{{Client: 2}}, Stats: Stats{Applied: 1}}
	batches <- Batch{Worker: 1, Stats: Stats{Invalid: 1}, Err: first}
	batches <- Batch{Worker: 2, Stats: Stats{Ignored: 2}, Err: errors.New("second")}
	close(batches)

	states, stats, err := Collect(batches)
	if states != nil {
		t.Errorf("Collect() returned states %+v, want none", states)
	}
	if !errors.Is(err, first) {
		t.Errorf("Collect() error = %v, want %v", err, first)
	}
	if want := (Stats{Applied: 1, Ignored: 2, Invalid: 1}); stats != want || stats.Total() != 4 {
		t.Errorf("Collect() stats = %+v, want %+v", stats, want)
	}
}
