package auth

type ClaimsData struct {
	Issuer      string
	UserID      string
	Name        string
	AccessLevel int
	ExpiresAt   int64
	IssuedAt    int64
	UserAgent   string
	DeviceID    string
}
