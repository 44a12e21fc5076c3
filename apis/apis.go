package apis

import (
	"net/http"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/holiman/uint256"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/RiemaLabs/dividend-ledger/ledger"
	"github.com/RiemaLabs/dividend-ledger/ledger/getter"
	"github.com/RiemaLabs/dividend-ledger/ledger/history"
	"github.com/RiemaLabs/dividend-ledger/ledger/state"
)

const DefaultCacheSize = 4096

// historyKey addresses a historical value. An empty account stands for the
// aggregate.
type historyKey struct {
	account ledger.Address
	version ledger.Version
}

type Service struct {
	state    *state.State
	writable bool
	history  *lru.Cache[historyKey, string]
	// Stamps posted actions that carry no time.
	clock clockwork.Clock
}

func NewService(st *state.State, writable bool, cacheSize int) (*Service, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[historyKey, string](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{state: st, writable: writable, history: cache, clock: clockwork.NewRealClock()}, nil
}

// historical reads a value at a version through the cache. Values at versions
// up to the current one never change; later ones are read directly.
// The caller holds the read lock.
func (s *Service) historical(key historyKey, read func() *uint256.Int) string {
	if key.version > s.state.Ledger.Version() {
		return read().Dec()
	}
	if v, found := s.history.Get(key); found {
		return v
	}
	v := read().Dec()
	s.history.Add(key, v)
	return v
}

func (s *Service) GetVersion(c *gin.Context) {
	s.state.RLock()
	defer s.state.RUnlock()

	custody := s.state.Dividends.Custody()
	ok(c, VersionResult{
		Height:         s.state.Height,
		Version:        s.state.Ledger.Version(),
		TotalSupply:    s.state.Token.TotalSupply().Dec(),
		Time:           s.state.Now(),
		Custody:        custody,
		CustodyBalance: s.state.Cash.BalanceOf(custody).Dec(),
	})
}

func (s *Service) GetBalanceOf(c *gin.Context) {
	account, err := accountParam(c.Query("account"))
	if err != nil {
		fail(c, err)
		return
	}
	s.state.RLock()
	defer s.state.RUnlock()

	ok(c, BalanceResult{
		Account: account,
		Version: s.state.Ledger.Version(),
		Balance: s.state.Token.BalanceOf(account).Dec(),
	})
}

func (s *Service) GetBalanceOfAt(c *gin.Context) {
	account, err := accountParam(c.Query("account"))
	if err != nil {
		fail(c, err)
		return
	}
	version, err := versionParam(c.Query("version"))
	if err != nil {
		fail(c, err)
		return
	}
	s.state.RLock()
	defer s.state.RUnlock()

	balance := s.historical(historyKey{account, version}, func() *uint256.Int {
		return s.state.Token.BalanceOfAt(account, version)
	})
	ok(c, BalanceResult{Account: account, Version: version, Balance: balance})
}

func (s *Service) GetTotalSupplyAt(c *gin.Context) {
	version, err := versionParam(c.Query("version"))
	if err != nil {
		fail(c, err)
		return
	}
	s.state.RLock()
	defer s.state.RUnlock()

	supply := s.historical(historyKey{version: version}, func() *uint256.Int {
		return s.state.Token.TotalSupplyAt(version)
	})
	ok(c, SupplyResult{Version: version, TotalSupply: supply})
}

func (s *Service) GetCheckpoints(c *gin.Context) {
	s.state.RLock()
	defer s.state.RUnlock()

	raw := c.Query("account")
	if raw == "" {
		ok(c, CheckpointsResult{Checkpoints: history.EncodeCheckpoints(s.state.Ledger.AggregateCheckpoints())})
		return
	}
	account := ledger.NewAddress(raw)
	ok(c, CheckpointsResult{
		Account:     account,
		Checkpoints: history.EncodeCheckpoints(s.state.Ledger.Checkpoints(account)),
	})
}

func (s *Service) payoutResult(index int) (PayoutResult, error) {
	p, err := s.state.Dividends.Payout(index)
	if err != nil {
		return PayoutResult{}, err
	}
	j := p.JSON()
	return PayoutResult{
		Index:        index,
		Unclaimed:    p.Unclaimed().Dec(),
		Unlocks:      p.CreatedAt.Add(s.state.Dividends.LockPeriod()).UTC(),
		Amount:       j.Amount,
		Version:      j.Version,
		TotalSupply:  j.TotalSupply,
		CreatedAt:    j.CreatedAt,
		TotalClaimed: j.TotalClaimed,
		Recycled:     j.Recycled,
	}, nil
}

func (s *Service) GetPayouts(c *gin.Context) {
	s.state.RLock()
	defer s.state.RUnlock()

	res := make([]PayoutResult, 0, s.state.Dividends.Count())
	for i := 0; i < s.state.Dividends.Count(); i++ {
		p, err := s.payoutResult(i)
		if err != nil {
			fail(c, err)
			return
		}
		res = append(res, p)
	}
	ok(c, res)
}

func (s *Service) GetPayout(c *gin.Context) {
	index, err := indexParam(c.Param("index"))
	if err != nil {
		fail(c, err)
		return
	}
	s.state.RLock()
	defer s.state.RUnlock()

	p, err := s.payoutResult(index)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, p)
}

func (s *Service) GetClaim(c *gin.Context) {
	index, err := indexParam(c.Param("index"))
	if err != nil {
		fail(c, err)
		return
	}
	account, err := accountParam(c.Param("account"))
	if err != nil {
		fail(c, err)
		return
	}
	s.state.RLock()
	defer s.state.RUnlock()

	share, err := s.state.Dividends.ShareOf(account, index)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, ClaimResult{
		Account: account,
		Index:   index,
		Claimed: s.state.Dividends.IsClaimed(account, index),
		Share:   share.Dec(),
	})
}

func (s *Service) GetPending(c *gin.Context) {
	account, err := accountParam(c.Query("account"))
	if err != nil {
		fail(c, err)
		return
	}
	s.state.RLock()
	defer s.state.RUnlock()

	pending, err := s.state.Dividends.Pending(account)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, BalanceResult{Account: account, Version: s.state.Ledger.Version(), Balance: pending.Dec()})
}

func (s *Service) GetCashOf(c *gin.Context) {
	account, err := accountParam(c.Query("account"))
	if err != nil {
		fail(c, err)
		return
	}
	s.state.RLock()
	defer s.state.RUnlock()

	ok(c, BalanceResult{
		Account: account,
		Version: s.state.Ledger.Version(),
		Balance: s.state.Cash.BalanceOf(account).Dec(),
	})
}

func (s *Service) GetDigest(c *gin.Context) {
	s.state.RLock()
	defer s.state.RUnlock()

	digest, err := s.state.DigestHex()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, DigestResult{Height: s.state.Height, Digest: digest})
}

// GetSnapshot returns the serialized state the digest is computed over.
func (s *Service) GetSnapshot(c *gin.Context) {
	s.state.RLock()
	defer s.state.RUnlock()

	raw, err := s.state.Serialize()
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

func (s *Service) PostAction(c *gin.Context) {
	var a getter.Action
	if err := c.ShouldBindJSON(&a); err != nil {
		fail(c, errors.Wrap(errBadAction, err.Error()))
		return
	}
	a.Normalize()
	if a.Time.IsZero() {
		a.Time = s.clock.Now().UTC()
	}

	s.state.Lock()
	defer s.state.Unlock()

	r, err := state.Exec(s.state, a)
	if err != nil {
		log.WithFields(log.Fields{"op": a.Op, "caller": a.Caller}).Infof("Action rejected: %v", err)
		fail(c, err)
		return
	}
	ok(c, r)
}
