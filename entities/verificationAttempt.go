package entities

import (
	"time"

	"facegate.io/application/utils"
)

// One liveness decision made for an uploaded video or fallback image.
// Attempts are kept as an audit trail and trimmed by a background task.
type VerificationAttempt struct {
	UserID     *string            `bson:"userID" json:"userID"`
	DeviceID   string             `bson:"deviceID" json:"deviceID"`
	DeviceName string             `bson:"deviceName" json:"deviceName"`
	IsLive     bool               `bson:"isLive" json:"isLive"`
	FinalScore float64            `bson:"finalScore" json:"finalScore"`
	ReasonCode string             `bson:"reasonCode" json:"reasonCode"`
	Signals    map[string]float64 `bson:"signals" json:"signals"`
	Matched    bool               `bson:"matched" json:"matched"`

	ID        string    `bson:"_id" json:"id"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (model VerificationAttempt) ParseModel() any {
	now := time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
		if model.ID == "" {
			model.ID = utils.GenerateUULDString()
		}
	}
	model.UpdatedAt = now
	return &model
}
