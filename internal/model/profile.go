package model

import "time"

// Profile represents a participant's study record as stored in the
// `profiles` table. Exactly one profile exists per user; it is
// created when the participant completes the intake form and is
// never hard-deleted while a study is running (IsActive toggles
// the soft lifecycle instead). The intake fields are opaque to the
// core logic and are only echoed back to the participant and the
// study coordinator.
//
// Fields:
//  ID               – primary key identifier of the profile.
//  UserID           – owning user (unique; one profile per user).
//  EnrolledAt       – when the participant entered the study; anchors
//                     all week-number derivation.
//  IsAdmin          – administrator flag read by the identity resolver.
//  AgeRange         – intake: self-reported age bracket.
//  SkinType         – intake: self-reported skin type.
//  Concerns         – intake: free-text list of skin concerns.
//  Lifestyle        – intake: free-text lifestyle factors.
//  Status           – coordinator-managed free-text status.
//  IsActive         – soft lifecycle flag; false means withdrawn.
//  CreatedAt        – timestamp of creation.
//  UpdatedAt        – timestamp of last update.
type Profile struct {
	ID         uint64    // profiles.id
	UserID     uint64    // profiles.user_id
	EnrolledAt time.Time // profiles.enrolled_at
	IsAdmin    bool      // profiles.is_admin
	AgeRange   string    // profiles.age_range
	SkinType   string    // profiles.skin_type
	Concerns   string    // profiles.concerns
	Lifestyle  string    // profiles.lifestyle
	Status     string    // profiles.status
	IsActive   bool      // profiles.is_active
	CreatedAt  time.Time // profiles.created_at
	UpdatedAt  time.Time // profiles.updated_at
}
