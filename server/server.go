// Package server hosts a single environment over HTTP
package server

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zeu5/leanrl/env"
	"github.com/zeu5/leanrl/store"
	"github.com/zeu5/leanrl/types"
)

type obsRequest struct {
	Obs []float32 `json:"obs"`
}

type invariantRequest struct {
	Obs    []float32 `json:"obs"`
	Action []float32 `json:"action"`
}

type actionResponse struct {
	Action   types.Action2 `json:"action"`
	Steps    uint64        `json:"steps"`
	Episodes uint64        `json:"episodes"`
}

// Server serialises every call to the environment behind one lock
type Server struct {
	Addr   string
	ctx    context.Context
	server *http.Server

	lock *sync.Mutex
	env  *env.Env4x2
	// optional, accepted weights are also put here under name
	store store.Store
	name  string
}

func NewServer(ctx context.Context, addr string, environment *env.Env4x2, st store.Store, name string) *Server {
	s := &Server{
		Addr:  addr,
		ctx:   ctx,
		lock:  new(sync.Mutex),
		env:   environment,
		store: st,
		name:  name,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/healthz", s.handleHealth)
	r.POST("/reset", s.handleReset)
	r.POST("/step", s.handleStep)
	r.POST("/invariant", s.handleInvariant)
	r.GET("/state", s.handleState)
	r.GET("/weights", s.handleGetWeights)
	r.PUT("/weights", s.handlePutWeights)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Run serves until the context is cancelled
func (s *Server) Run() error {
	go func() {
		<-s.ctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.server.Shutdown(ctx)
	}()
	log.Printf("serving environment on %s", s.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func status(err error) int {
	switch {
	case errors.Is(err, types.ErrPolicy):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrInvalidWeights), errors.Is(err, types.ErrInvalidSize), errors.Is(err, types.ErrOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abort(c *gin.Context, err error) {
	c.JSON(status(err), gin.H{"error": err.Error(), "code": types.Code(err)})
}

func (s *Server) handleHealth(c *gin.Context) {
	s.lock.Lock()
	valid := s.env.IsValid()
	s.lock.Unlock()
	if !valid {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "invalid environment"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func (s *Server) bindObs(c *gin.Context) (types.Obs4, bool) {
	req := obsRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to unmarshal request"})
		return types.Obs4{}, false
	}
	obs, err := types.Obs4FromSlice(req.Obs)
	if err != nil {
		abort(c, err)
		return types.Obs4{}, false
	}
	return obs, true
}

func (s *Server) act(c *gin.Context, f func(types.Obs4) (types.Action2, error)) {
	obs, ok := s.bindObs(c)
	if !ok {
		return
	}
	s.lock.Lock()
	action, err := f(obs)
	steps, episodes := s.env.State()
	s.lock.Unlock()
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, actionResponse{Action: action, Steps: steps, Episodes: episodes})
}

func (s *Server) handleReset(c *gin.Context) {
	s.act(c, s.env.Reset)
}

func (s *Server) handleStep(c *gin.Context) {
	s.act(c, s.env.Step)
}

func (s *Server) handleInvariant(c *gin.Context) {
	req := invariantRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to unmarshal request"})
		return
	}
	obs, err := types.Obs4FromSlice(req.Obs)
	if err != nil {
		abort(c, err)
		return
	}
	action, err := types.Action2FromSlice(req.Action)
	if err != nil {
		abort(c, err)
		return
	}
	s.lock.Lock()
	err = s.env.VerifyInvariant(obs, action)
	s.lock.Unlock()
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"ok": false, "reason": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleState(c *gin.Context) {
	s.lock.Lock()
	state := s.env.Snapshot()
	s.lock.Unlock()
	c.JSON(http.StatusOK, state)
}

func (s *Server) handleGetWeights(c *gin.Context) {
	s.lock.Lock()
	weights := s.env.Weights()
	s.lock.Unlock()
	c.Data(http.StatusOK, "application/octet-stream", weights)
}

// MaxWeightsSize bounds the body of PUT /weights
const MaxWeightsSize = 8 << 20

// handlePutWeights validates the blob on a clone, stores it, then swaps it in.
// A failed store write leaves the served weights unchanged.
func (s *Server) handlePutWeights(c *gin.Context) {
	weights, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxWeightsSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read weights"})
		return
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.env.Clone().TryUpdateWeights(weights); err != nil {
		abort(c, err)
		return
	}
	resp := gin.H{}
	if s.store != nil {
		version, err := s.store.Put(c.Request.Context(), s.name, weights)
		if err != nil {
			log.Printf("storing weights %s: %s", s.name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "hash": s.env.Hash()})
			return
		}
		resp["version"] = version
	}
	if err := s.env.TryUpdateWeights(weights); err != nil {
		abort(c, err)
		return
	}
	resp["hash"] = s.env.Hash()
	c.JSON(http.StatusOK, resp)
}
