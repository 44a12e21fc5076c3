package apis

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/RiemaLabs/dividend-ledger/internal/metrics"
)

func NewRouter(s *Service, enablePprof bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), metrics.HTTP, cors.Default())
	if enablePprof {
		pprof.Register(r)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	v1 := r.Group("/v1/ledger")
	v1.GET("/version", s.GetVersion)
	v1.GET("/balance_of", s.GetBalanceOf)
	v1.GET("/balance_of_at", s.GetBalanceOfAt)
	v1.GET("/total_supply_at", s.GetTotalSupplyAt)
	v1.GET("/checkpoints", s.GetCheckpoints)
	v1.GET("/payouts", s.GetPayouts)
	v1.GET("/payouts/:index", s.GetPayout)
	v1.GET("/payouts/:index/claims/:account", s.GetClaim)
	v1.GET("/pending", s.GetPending)
	v1.GET("/cash_of", s.GetCashOf)
	v1.GET("/digest", s.GetDigest)
	v1.GET("/snapshot", s.GetSnapshot)
	if s.writable {
		v1.POST("/actions", s.PostAction)
	}
	return r
}

func StartService(s *Service, addr string, enablePprof bool) {
	if !enablePprof {
		gin.SetMode(gin.ReleaseMode)
	}
	r := NewRouter(s, enablePprof)
	log.Printf("Serving ledger API on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to serve ledger API: %v", err)
	}
}
