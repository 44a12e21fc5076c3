package state

import (
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"

	"github.com/RiemaLabs/dividend-ledger/ledger"
	"github.com/RiemaLabs/dividend-ledger/ledger/access"
	"github.com/RiemaLabs/dividend-ledger/ledger/cash"
	"github.com/RiemaLabs/dividend-ledger/ledger/dividend"
	"github.com/RiemaLabs/dividend-ledger/ledger/history"
	"github.com/RiemaLabs/dividend-ledger/ledger/token"
)

type Snapshot struct {
	Height    uint                      `json:"height"`
	Clock     time.Time                 `json:"clock"`
	Ledger    history.Snapshot          `json:"ledger"`
	Control   access.State              `json:"control"`
	Token     token.State               `json:"token"`
	Cash      map[ledger.Address]string `json:"cash"`
	Dividends dividend.State            `json:"dividends"`
}

func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Height:    s.Height,
		Clock:     s.clock.Now().UTC(),
		Ledger:    s.Ledger.Export(),
		Control:   s.Control.Export(),
		Token:     s.Token.Export(),
		Cash:      s.Cash.Export(),
		Dividends: s.Dividends.Export(),
	}
}

// Serialize encodes the snapshot as JSON. Map keys are sorted by the encoder,
// so equal states serialize to equal bytes.
func (s *State) Serialize() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// Digest is the Keccak-256 of the serialized state.
func (s *State) Digest() ([]byte, error) {
	raw, err := s.Serialize()
	if err != nil {
		return nil, err
	}
	h := sha3.NewLegacyKeccak256()
	h.Write(raw)
	return h.Sum(nil), nil
}

func (s *State) DigestHex() (string, error) {
	d, err := s.Digest()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(d), nil
}

// Restore rebuilds a state from a snapshot. The lock period comes from config.
func Restore(config Config, snap Snapshot) (*State, error) {
	l, err := history.Import(snap.Ledger)
	if err != nil {
		return nil, errors.Wrap(err, "restore ledger")
	}
	control, err := access.Import(snap.Control)
	if err != nil {
		return nil, errors.Wrap(err, "restore control")
	}
	tk, err := token.Import(l, control, snap.Token)
	if err != nil {
		return nil, errors.Wrap(err, "restore token")
	}
	c, err := cash.Import(snap.Cash)
	if err != nil {
		return nil, errors.Wrap(err, "restore cash")
	}
	config.Genesis = snap.Clock
	s := assemble(config, l, control, tk, c, snap.Height)
	if err := s.Dividends.Import(snap.Dividends); err != nil {
		return nil, errors.Wrap(err, "restore dividends")
	}
	return s, nil
}

func Deserialize(config Config, raw []byte) (*State, error) {
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, errors.Wrap(err, "decode snapshot")
	}
	return Restore(config, snap)
}
