package rollout

import (
	"math"

	"github.com/zeu5/leanrl/types"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Plant is the system being controlled. It produces the observations the
// environment acts on and consumes the actions it returns.
type Plant interface {
	// Reset starts a new episode and returns the initial observation
	Reset() types.Obs4
	// Advance applies the action, returns the next observation, the reward
	// and whether the episode has ended
	Advance(types.Action2) (types.Obs4, float64, bool)
}

type PointMassConfig struct {
	// integration time step
	Dt float64
	// velocity damping per step, in [0, 1)
	Damping float64
	// the episode ends once |x| or |y| goes past Bound
	Bound float64
	// initial positions are sampled uniformly in [-InitSpread, InitSpread], velocities start at 0
	InitSpread float64
	// weight of the action magnitude in the reward
	ActionCost float64
	Seed       uint64
}

func DefaultPointMassConfig() *PointMassConfig {
	return &PointMassConfig{
		Dt:         0.05,
		Damping:    0.1,
		Bound:      1,
		InitSpread: 0.5,
		ActionCost: 0.01,
		Seed:       1,
	}
}

func (c *PointMassConfig) Printable() map[string]interface{} {
	out := make(map[string]interface{})
	out["dt"] = c.Dt
	out["damping"] = c.Damping
	out["bound"] = c.Bound
	out["init_spread"] = c.InitSpread
	out["action_cost"] = c.ActionCost
	out["seed"] = c.Seed
	return out
}

// PointMass is a unit mass on a plane. The observation is (x, y, vx, vy) and
// the action is the acceleration along both axes. The reward is the negative
// squared distance from the origin minus the action cost.
type PointMass struct {
	config *PointMassConfig
	init   distuv.Uniform

	x, y, vx, vy float64
}

var _ Plant = &PointMass{}

func NewPointMass(config *PointMassConfig) *PointMass {
	return &PointMass{
		config: config,
		init: distuv.Uniform{
			Min: -config.InitSpread,
			Max: config.InitSpread,
			Src: rand.NewSource(config.Seed),
		},
	}
}

func (p *PointMass) obs() types.Obs4 {
	return types.NewObs4(float32(p.x), float32(p.y), float32(p.vx), float32(p.vy))
}

func (p *PointMass) Reset() types.Obs4 {
	p.x = p.init.Rand()
	p.y = p.init.Rand()
	p.vx, p.vy = 0, 0
	return p.obs()
}

func (p *PointMass) Advance(a types.Action2) (types.Obs4, float64, bool) {
	dt := p.config.Dt
	keep := 1 - p.config.Damping
	p.vx = keep*p.vx + float64(a[0])*dt
	p.vy = keep*p.vy + float64(a[1])*dt
	p.x += p.vx * dt
	p.y += p.vy * dt

	reward := -(p.x*p.x + p.y*p.y) - p.config.ActionCost*float64(a[0]*a[0]+a[1]*a[1])
	done := math.Abs(p.x) > p.config.Bound || math.Abs(p.y) > p.config.Bound
	return p.obs(), reward, done
}
