package sim

import "fmt"

// FitnessRule weights the per-tick reward contributions: food eaten, a flat
// bonus for surviving the tick, and distance covered. The rule fires at tick
// time; final evaluation only reads the accumulated total.
type FitnessRule struct {
	FoodWeight     float64
	SurvivalBonus  float64
	DistanceWeight float64
}

func DefaultFitnessRule() FitnessRule {
	return FitnessRule{
		FoodWeight:     10,
		SurvivalBonus:  1,
		DistanceWeight: 0.1,
	}
}

func (r FitnessRule) Validate() error {
	if r.FoodWeight < 0 || r.SurvivalBonus < 0 || r.DistanceWeight < 0 {
		return fmt.Errorf("fitness rule weights must be >= 0, got %+v", r)
	}
	return nil
}

func (r FitnessRule) tickReward(eaten, distance float64) float64 {
	return r.FoodWeight*eaten + r.SurvivalBonus + r.DistanceWeight*distance
}

// EvaluateFitness reads an agent's accumulated reward as its fitness,
// clamped to zero. Pure: no randomness, and calling it never changes the
// agent.
func EvaluateFitness(a *Agent) float64 {
	if a.reward < 0 {
		return 0
	}
	return a.reward
}
