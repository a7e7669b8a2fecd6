package neat

import (
	"fmt"
	"math"
)

// ActivationType is the nonlinearity applied to a node's aggregated input.
type ActivationType func(x float64) float64

// ActivationFunctions maps function names to the actual activation functions,
// so configuration can select the nonlinearity by name.
var ActivationFunctions = map[string]ActivationType{
	"sigmoid":  Sigmoid,
	"tanh":     Tanh,
	"relu":     ReLU,
	"clamped":  Clamped,
	"identity": Identity,
}

// GetActivation retrieves an activation function by name.
func GetActivation(name string) (ActivationType, error) {
	if fn, ok := ActivationFunctions[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown activation function: %s", name)
}

// Sigmoid is the steepened logistic function used by the original NEAT
// experiments (k = 4.9), bounded to (0, 1).
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-4.9*x))
}

// Tanh activation function, bounded to (-1, 1).
func Tanh(x float64) float64 {
	return math.Tanh(x)
}

// ReLU (rectified linear unit) activation function.
func ReLU(x float64) float64 {
	return math.Max(0, x)
}

// Clamped clips its input to [-1, 1].
func Clamped(x float64) float64 {
	return clamp(x, -1.0, 1.0)
}

// Identity activation function (linear).
func Identity(x float64) float64 {
	return x
}

// clamp restricts a value to the range [minVal, maxVal].
func clamp(value, minVal, maxVal float64) float64 {
	return math.Max(minVal, math.Min(value, maxVal))
}
