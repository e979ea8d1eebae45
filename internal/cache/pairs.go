package cache

import "github.com/ethereum/go-ethereum/common"

// Pairs adapts the store to the session's pool-address cache. Only live pool
// addresses are written: a zero address means "no pool yet" and may become
// stale the moment someone deploys the pair, so negatives are never cached.
type Pairs struct {
	store *Store
}

func NewPairs(store *Store) *Pairs {
	return &Pairs{store: store}
}

func (p *Pairs) Get(key string) (common.Address, bool) {
	if p == nil || p.store == nil {
		return common.Address{}, false
	}
	value, ok, err := p.store.Get("pair:" + key)
	if err != nil || !ok || len(value) != common.AddressLength {
		return common.Address{}, false
	}
	return common.BytesToAddress(value), true
}

func (p *Pairs) Put(key string, addr common.Address) {
	if p == nil || p.store == nil || addr == (common.Address{}) {
		return
	}
	_ = p.store.Set("pair:"+key, addr.Bytes())
}
