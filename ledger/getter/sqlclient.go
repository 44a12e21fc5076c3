package getter

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/RiemaLabs/dividend-ledger/internal/metrics"
	"github.com/RiemaLabs/dividend-ledger/ledger"
)

type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	DBname   string
	Port     string
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.DBname)
}

// actionRow is the ledger_actions table.
type actionRow struct {
	ID        uint      `gorm:"column:id"`
	Height    uint      `gorm:"column:height"`
	Op        string    `gorm:"column:op"`
	Caller    string    `gorm:"column:caller"`
	From      string    `gorm:"column:from_address"`
	To        string    `gorm:"column:to_address"`
	Spender   string    `gorm:"column:spender"`
	Amount    string    `gorm:"column:amount"`
	Value     string    `gorm:"column:value"`
	Index     int       `gorm:"column:payout_index"`
	FromIndex int       `gorm:"column:from_index"`
	TillIndex int       `gorm:"column:till_index"`
	Flag      bool      `gorm:"column:flag"`
	Name      string    `gorm:"column:name"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (actionRow) TableName() string {
	return "ledger_actions"
}

func (r actionRow) action() Action {
	return Action{
		ID:        r.ID,
		Height:    r.Height,
		Op:        Op(r.Op),
		Caller:    ledger.NewAddress(r.Caller),
		From:      ledger.NewAddress(r.From),
		To:        ledger.NewAddress(r.To),
		Spender:   ledger.NewAddress(r.Spender),
		Amount:    r.Amount,
		Value:     r.Value,
		Index:     r.Index,
		FromIndex: r.FromIndex,
		TillIndex: r.TillIndex,
		Flag:      r.Flag,
		Name:      r.Name,
		Time:      r.CreatedAt,
	}
}

type SQLGetter struct {
	db *gorm.DB
}

func ConnectDatabase(config DatabaseConfig) (*gorm.DB, error) {
	return gorm.Open(mysql.Open(config.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

func NewSQLGetter(config DatabaseConfig) (*SQLGetter, error) {
	db, err := ConnectDatabase(config)
	if err != nil {
		return nil, err
	}
	return &SQLGetter{db: db}, nil
}

func (g *SQLGetter) GetLatestHeight() (uint, error) {
	defer metrics.ObserveDBQuery("getLatestHeight", time.Now())
	var height uint
	sql := `
		SELECT COALESCE(MAX(height), 0)
		FROM ledger_actions
	`
	if err := g.db.Raw(sql).Scan(&height).Error; err != nil {
		return 0, err
	}
	return height, nil
}

func (g *SQLGetter) GetActions(height uint) ([]Action, error) {
	defer metrics.ObserveDBQuery("getActions", time.Now())
	var rows []actionRow
	err := g.db.Where("height = ?", height).Order("id asc").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	actions := make([]Action, len(rows))
	for i, r := range rows {
		actions[i] = r.action()
	}
	return actions, nil
}
