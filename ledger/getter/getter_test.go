package getter

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RiemaLabs/dividend-ledger/ledger"
)

func newFeed(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/v1/ledger/height", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "", "data": gin.H{"height": 7}})
	})
	r.GET("/api/v1/ledger/actions/:height", func(c *gin.Context) {
		if c.Param("height") == "9" {
			c.JSON(http.StatusOK, gin.H{"code": 1, "msg": "unknown height"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "", "data": gin.H{"actions": []gin.H{
			{"id": 1, "op": "mint", "caller": " 0xOwner", "to": "0xAlice", "amount": "100"},
			{"id": 2, "op": "declare", "caller": "0xowner", "amount": "5", "value": "5"},
		}}})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPGetter(t *testing.T) {
	srv := newFeed(t)
	g, err := NewHTTPGetter(srv.URL + "/")
	require.NoError(t, err)

	height, err := g.GetLatestHeight()
	require.NoError(t, err)
	assert.Equal(t, uint(7), height)

	actions, err := g.GetActions(3)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, OpMint, actions[0].Op)
	assert.Equal(t, ledger.Address("0xowner"), actions[0].Caller)
	assert.Equal(t, ledger.Address("0xalice"), actions[0].To)
	assert.Equal(t, uint(3), actions[1].Height)
	assert.Equal(t, "5", actions[1].Value)

	_, err = g.GetActions(9)
	assert.ErrorContains(t, err, "unknown height")

	_, err = NewHTTPGetter("")
	assert.Error(t, err)
}

func TestHTTPGetterBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	g, _ := NewHTTPGetter(srv.URL)
	_, err := g.GetLatestHeight()
	assert.ErrorContains(t, err, "404")
}

func TestMemoryGetter(t *testing.T) {
	g := NewMemoryGetter([]Action{
		{Height: 1, Op: OpMint},
		{Height: 3, Op: OpTransfer},
		{Height: 1, Op: OpSetAlive},
	})
	height, _ := g.GetLatestHeight()
	assert.Equal(t, uint(3), height)
	actions, err := g.GetActions(1)
	require.NoError(t, err)
	assert.Equal(t, []Op{OpMint, OpSetAlive}, []Op{actions[0].Op, actions[1].Op})
	actions, err = g.GetActions(2)
	require.NoError(t, err)
	assert.Empty(t, actions)
	_, err = g.GetActions(4)
	assert.Error(t, err)
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.csv")
	content := "height,op,caller,from,to,spender,amount,value,index,fromIndex,tillIndex,flag,name,time\n" +
		"1,setAlive,0xOwner,,,,,,,,,,,2018-01-01T00:00:00Z\n" +
		"1,mint,0xowner,,0xalice,,100,,,,,,,\n" +
		"2,claimBatch,0xalice,,,,,,,0,12,,,\n" +
		"2,enableTransfers,0xowner,,,,,,,,,true,,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	g, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, uint(2), g.LatestHeight)

	first, _ := g.GetActions(1)
	require.Len(t, first, 2)
	assert.Equal(t, ledger.Address("0xowner"), first[0].Caller)
	assert.Equal(t, time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), first[0].Time.UTC())
	assert.Equal(t, "100", first[1].Amount)

	second, _ := g.GetActions(2)
	require.Len(t, second, 2)
	assert.Equal(t, 12, second[0].TillIndex)
	assert.True(t, second[1].Flag)
	assert.Equal(t, uint(4), second[1].ID)
}

func TestLoadCSVRejectsBadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.csv")
	content := "height,op,caller,from,to,spender,amount,value,index,fromIndex,tillIndex,flag,name,time\n" +
		"x,mint,0xowner,,0xalice,,100,,,,,,,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	_, err := LoadCSV(path)
	assert.Error(t, err)
}

func TestActionRow(t *testing.T) {
	at := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)
	a := actionRow{ID: 3, Height: 9, Op: "transferFrom", Caller: "0xBob", From: "0xAlice", To: "0xCarol", Amount: "7", CreatedAt: at}.action()
	assert.Equal(t, OpTransferFrom, a.Op)
	assert.Equal(t, ledger.Address("0xbob"), a.Caller)
	assert.Equal(t, ledger.Address("0xalice"), a.From)
	assert.Equal(t, at, a.Time)
	assert.Equal(t, "ledger_actions", actionRow{}.TableName())
	assert.Equal(t, "u:p@tcp(h:3306)/d?charset=utf8mb4&parseTime=True&loc=UTC",
		DatabaseConfig{Host: "h", User: "u", Password: "p", DBname: "d", Port: "3306"}.DSN())
}
