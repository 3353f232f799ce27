package search

// Solution is an opaque payload (a vector of real values) plus a scalar
// objective. Quality equals Objective, so solutions already sort
// ascending by objective through pool.Qualified.
type Solution struct {
	Payload   []float64
	Objective float64
	OwnerID   int
}

// Quality implements pool.Qualified.
func (s Solution) Quality() float64 { return s.Objective }

// Model is the client's opaque, framed problem instance, broadcast once
// at startup and immutable for the duration of the search.
type Model struct {
	Tag     string
	Payload []byte
}
