package entities

import (
	"time"

	"facegate.io/application/utils"
)

// This represents a person enrolled through the face registration flow
type User struct {
	Name         string    `bson:"name" json:"name"`
	AccessLevel  int       `bson:"accessLevel" json:"accessLevel"`
	FaceEncoding []float64 `bson:"faceEncoding" json:"-"`
	ImageKey     string    `bson:"imageKey" json:"-"`
	UserAgent    string    `bson:"userAgent" json:"userAgent"`
	Deactivated  bool      `bson:"deactivated" json:"deactivated"`

	ID        string    `bson:"_id" json:"id"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (model User) ParseModel() any {
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
