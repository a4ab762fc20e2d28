package types

type FaceMatchServiceType interface {
	EncodeFace(image *string) (*FaceEncodingResponse, error)
	MatchFace(probe []float64, candidates []CandidateEncoding) (*FaceMatchResponse, error)
}

type FaceEncodingRequest struct {
	Image *string `json:"image"`
}

type FaceEncodingResponse struct {
	Success  bool      `json:"success"`
	Encoding []float64 `json:"encoding"`
	Error    *string   `json:"error,omitempty"`
}

type CandidateEncoding struct {
	UserID   string    `json:"user_id"`
	Encoding []float64 `json:"encoding"`
}

type FaceMatchRequest struct {
	Probe      []float64           `json:"probe"`
	Candidates []CandidateEncoding `json:"candidates"`
	Tolerance  float64             `json:"tolerance"`
}

type FaceMatchResponse struct {
	Success  bool     `json:"success"`
	Matched  bool     `json:"matched"`
	UserID   *string  `json:"user_id,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
	Error    *string  `json:"error,omitempty"`
}
