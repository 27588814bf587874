package id

import "github.com/google/uuid"

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID() (string, error) {
	out, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return out.String(), nil
}
