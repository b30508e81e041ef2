package rng

// Generator is a source of random numbers
type Generator interface {
	// Intn returns a random number in [0, n)
	Intn(n int) int
}
