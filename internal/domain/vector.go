package domain

// VectorPoint is one chunk stored in the vector database.
type VectorPoint struct {
	ID         string
	Vector     []float32
	CaseID     string
	Title      string
	Tags       string
	ChunkIndex int
	Text       string
}

// VectorHit is a vector database match with its similarity score.
type VectorHit struct {
	CaseID     string
	Title      string
	Tags       string
	ChunkIndex int
	Text       string
	Score      float64
}
