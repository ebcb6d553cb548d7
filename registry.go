package payments

// clientTx identifies a transaction of a given client.
type clientTx struct {
	client uint16
	tx     uint32
}

// registry maps accepted deposits to the amount a later dispute would hold.
// It belongs to a single worker and is never shared.
type registry struct {
	amounts map[clientTx]Amount
}

func newRegistry() *registry {
	return &registry{amounts: make(map[clientTx]Amount)}
}

// record registers amount for (client, tx). The first record wins, it returns false if
// the key was already present.
func (r *registry) record(client uint16, tx uint32, amount Amount) bool {
	key := clientTx{client, tx}
	if _, exists := r.amounts[key]; exists {
		return false
	}
	r.amounts[key] = amount
	return true
}

func (r *registry) lookup(client uint16, tx uint32) (Amount, bool) {
	a, ok := r.amounts[clientTx{client, tx}]
	return a, ok
}

// settle removes the entry so that a transaction cannot be resolved or charged back twice.
func (r *registry) settle(client uint16, tx uint32) {
	delete(r.amounts, clientTx{client, tx})
}

func (r *registry) len() int { return len(r.amounts) }
