package getter

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/RiemaLabs/dividend-ledger/ledger"
)

// MemoryGetter serves a fixed set of actions. LatestHeight can be moved by
// tests to simulate new heights arriving.
type MemoryGetter struct {
	LatestHeight uint
	Actions      map[uint][]Action
}

func NewMemoryGetter(actions []Action) *MemoryGetter {
	g := &MemoryGetter{Actions: make(map[uint][]Action)}
	for _, a := range actions {
		g.Append(a)
	}
	return g
}

func (g *MemoryGetter) Append(a Action) {
	g.Actions[a.Height] = append(g.Actions[a.Height], a)
	if a.Height > g.LatestHeight {
		g.LatestHeight = a.Height
	}
}

func (g *MemoryGetter) GetLatestHeight() (uint, error) {
	return g.LatestHeight, nil
}

func (g *MemoryGetter) GetActions(height uint) ([]Action, error) {
	if height > g.LatestHeight {
		return nil, fmt.Errorf("height %d is beyond the latest height %d", height, g.LatestHeight)
	}
	return g.Actions[height], nil
}

// csvColumns is the header expected by LoadCSV.
var csvColumns = []string{
	"height", "op", "caller", "from", "to", "spender", "amount", "value",
	"index", "fromIndex", "tillIndex", "flag", "name", "time",
}

// LoadCSV reads actions from a file with csvColumns as its header row. Times
// are RFC 3339 and may be empty.
func LoadCSV(path string) (*MemoryGetter, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(csvColumns)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header", path)
	}

	g := NewMemoryGetter(nil)
	for i, record := range records[1:] { // Skip header row
		a, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %v", path, i+2, err)
		}
		a.ID = uint(i + 1)
		g.Append(a)
	}
	return g, nil
}

func parseRecord(record []string) (Action, error) {
	var a Action
	height, err := strconv.ParseUint(record[0], 10, 64)
	if err != nil {
		return a, err
	}
	ints := make([]int, 3)
	for i, s := range record[8:11] {
		if s == "" {
			continue
		}
		if ints[i], err = strconv.Atoi(s); err != nil {
			return a, err
		}
	}
	var flag bool
	if record[11] != "" {
		if flag, err = strconv.ParseBool(record[11]); err != nil {
			return a, err
		}
	}
	var at time.Time
	if record[13] != "" {
		if at, err = time.Parse(time.RFC3339, record[13]); err != nil {
			return a, err
		}
	}
	return Action{
		Height:    uint(height),
		Op:        Op(record[1]),
		Caller:    ledger.NewAddress(record[2]),
		From:      ledger.NewAddress(record[3]),
		To:        ledger.NewAddress(record[4]),
		Spender:   ledger.NewAddress(record[5]),
		Amount:    record[6],
		Value:     record[7],
		Index:     ints[0],
		FromIndex: ints[1],
		TillIndex: ints[2],
		Flag:      flag,
		Name:      record[12],
		Time:      at,
	}, nil
}
