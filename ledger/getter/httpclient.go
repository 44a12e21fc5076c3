package getter

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/RiemaLabs/dividend-ledger/internal/metrics"
)

// HTTPGetter reads actions from an event feed that answers
//
//	GET {url}/api/v1/ledger/height
//	GET {url}/api/v1/ledger/actions/{height}
//
// with {"code": 0, "msg": "", "data": ...} envelopes.
type HTTPGetter struct {
	eventURL string
	client   *http.Client
}

func NewHTTPGetter(eventURL string) (*HTTPGetter, error) {
	if eventURL == "" {
		return nil, errors.New("empty event url")
	}
	return &HTTPGetter{
		eventURL: strings.TrimRight(eventURL, "/"),
		client:   &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (g *HTTPGetter) get(path string, out interface{}) error {
	resp, err := g.client.Get(g.eventURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return errors.Wrap(err, "decode envelope")
	}
	if env.Code != 0 {
		return fmt.Errorf("error: %s", env.Msg)
	}
	return errors.Wrap(json.Unmarshal(env.Data, out), "decode data")
}

func (g *HTTPGetter) GetLatestHeight() (uint, error) {
	defer metrics.ObserveDBQuery("getLatestHeight", time.Now())
	var data struct {
		Height *uint `json:"height"`
	}
	if err := g.get("/api/v1/ledger/height", &data); err != nil {
		return 0, err
	}
	if data.Height == nil {
		return 0, errors.New("missing height field")
	}
	return *data.Height, nil
}

func (g *HTTPGetter) GetActions(height uint) ([]Action, error) {
	defer metrics.ObserveDBQuery("getActions", time.Now())
	var data struct {
		Actions []Action `json:"actions"`
	}
	if err := g.get(fmt.Sprintf("/api/v1/ledger/actions/%d", height), &data); err != nil {
		return nil, err
	}
	for i := range data.Actions {
		data.Actions[i].Height = height
		data.Actions[i].Normalize()
	}
	return data.Actions, nil
}
