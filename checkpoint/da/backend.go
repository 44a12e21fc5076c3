package da

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/rollkit/go-da"
	"github.com/rollkit/go-da/proxy"
)

const (
	// NamespaceSize is the size of the hex encoded namespace string
	NamespaceSize = 29 * 2
	// MaxNamespaceID is the longest accepted namespace name in bytes
	MaxNamespaceID = 10
	// Default local deployed DA node
	DefaultNodeRPC       = "http://localhost:26658"
	DefaultNamespaceID   = "dividends"
	DefaultSubmitTimeout = time.Minute
)

type Backend struct {
	Client        da.DA
	SubmitTimeout time.Duration
	Namespace     da.Namespace
}

func NewBackend(rpc, token, namespaceID string, submitTimeout string) (*Backend, error) {
	client, err := proxy.NewClient(rpc, token)
	if err != nil {
		return nil, err
	}
	ns, err := Namespace(namespaceID)
	if err != nil {
		return nil, err
	}
	timeout, err := time.ParseDuration(submitTimeout)
	if err != nil {
		timeout = DefaultSubmitTimeout
	}
	return &Backend{
		Client:        client,
		SubmitTimeout: timeout,
		Namespace:     ns,
	}, nil
}

// Namespace left pads the hex of nID to the full namespace size.
func Namespace(nID string) (da.Namespace, error) {
	return hex.DecodeString(padNamespaceLeft(hex.EncodeToString([]byte(nID))))
}

func IsValidNamespaceID(nID string) bool {
	if nID == "" || len(nID) > MaxNamespaceID {
		return false
	}
	return len(hex.EncodeToString([]byte(nID))) <= NamespaceSize
}

func padNamespaceLeft(s string) string {
	if len(s) < NamespaceSize {
		return strings.Repeat("0", NamespaceSize-len(s)) + s
	}
	return s
}
