package models

// Profile is an Identity plus display counters. ConnectionsCount and
// FollowingCount stay nil until a relationship model exists.
type Profile struct {
	Identity
	PostsCount       int
	ConnectionsCount *int
	FollowingCount   *int
}

// Affordance is an action the profile view offers.
type Affordance string

const (
	AffordanceEdit    Affordance = "edit"
	AffordanceConnect Affordance = "connect"
	AffordanceMessage Affordance = "message"
)
