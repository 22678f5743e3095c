package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Charity represents a charity that subscribers can direct their prize
// split to. Managed outside this system; read-only here.
type Charity struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Active    bool               `bson:"active" json:"active"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
