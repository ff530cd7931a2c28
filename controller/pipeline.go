package controller

import (
	"github.com/mlange-42/ark/ecs"
)

// Stage names reported to the phase timer.
const (
	PhaseInput    = "input"
	PhaseGround   = "ground"
	PhaseMovement = "movement"
	PhaseGravity  = "gravity"
	PhaseDamping  = "damping"
)

// PhaseTimer receives stage boundaries. telemetry.PerfCollector implements it.
type PhaseTimer interface {
	StartPhase(name string)
}

// Pipeline runs the five controller stages in their fixed order.
type Pipeline struct {
	Translator *InputTranslator
	Classifier *GroundClassifier
	Integrator *MovementIntegrator
	Gravity    *GravityApplier
	Damping    *DampingApplier

	intents []Intent
}

// NewPipeline wires all stages to the world.
func NewPipeline(w *ecs.World, probe GroundProbe) *Pipeline {
	return &Pipeline{
		Translator: NewInputTranslator(),
		Classifier: NewGroundClassifier(w, probe),
		Integrator: NewMovementIntegrator(w),
		Gravity:    NewGravityApplier(w),
		Damping:    NewDampingApplier(w),
	}
}

// Step runs one frame: translate, classify, integrate, gravity, damping.
// The same dt is used by every stage. The returned intents are only valid
// until the next call. timer may be nil.
func (p *Pipeline) Step(keys Keys, yaw, dt float64, timer PhaseTimer) []Intent {
	phase := func(name string) {
		if timer != nil {
			timer.StartPhase(name)
		}
	}

	phase(PhaseInput)
	p.intents = p.Translator.Translate(p.intents[:0], keys, yaw)

	phase(PhaseGround)
	p.Classifier.Update()

	phase(PhaseMovement)
	p.Integrator.Update(p.intents, dt)

	phase(PhaseGravity)
	p.Gravity.Update(dt)

	phase(PhaseDamping)
	p.Damping.Update()

	return p.intents
}

// Reset clears state carried between frames.
func (p *Pipeline) Reset() {
	p.Translator.Reset()
	p.intents = p.intents[:0]
}
