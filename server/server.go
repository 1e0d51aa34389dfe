// Package server exposes the gate over HTTP. Caller identity comes from the
// X-Caller header; in a real deployment this sits behind an authenticating
// proxy that fills it in.
package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ikeenlabs/gatepass"
)

type Server struct {
	gate   *gatepass.Gate
	engine *gin.Engine
}

func New(gate *gatepass.Gate) *Server {
	s := &Server{
		gate:   gate,
		engine: gin.Default(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	v1 := s.engine.Group("/")
	{
		v1.POST("buy/:asset", s.buySpot)
		v1.POST("deposit", s.nativeDeposit)
		v1.POST("gimmeARefund/:id", s.gimmeARefund)
		v1.POST("whitelist/:address", s.addWhitelist)
		v1.POST("withdraw/:asset", s.withdraw)

		v1.GET("purchase/:address", s.getPurchase)
		v1.GET("owner/:id", s.getOwner)
		v1.GET("balance/:address", s.getBalance)
		v1.GET("assets", s.getAssets)
		v1.GET("info", s.getInfo)
	}

	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) Run(port string) error {
	return s.engine.Run(port)
}
