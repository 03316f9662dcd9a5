package model

import "time"

// FeedbackEntry is one weekly feedback record in the
// `feedback_entries` table. At most one entry may exist per
// (profile, week) pair; the table carries a unique key on
// (profile_id, week_number) which is the actual owner of that
// invariant — the handler's existence pre-check only exists to
// produce a friendlier conflict message.
//
// Fields:
//  ID            – primary key identifier.
//  ProfileID     – owning profile.
//  WeekNumber    – study week the entry covers (1..12).
//  SkinFeel      – observation: how the skin feels.
//  Changes       – observation: visible changes noticed.
//  Routine       – observation: routine adherence notes.
//  Reactions     – observation: irritation or reactions.
//  OverallRating – numeric rating bounded 1..10.
//  CreatedAt     – creation timestamp; entries are never updated.
type FeedbackEntry struct {
	ID            uint64    // feedback_entries.id
	ProfileID     uint64    // feedback_entries.profile_id
	WeekNumber    int       // feedback_entries.week_number
	SkinFeel      string    // feedback_entries.skin_feel
	Changes       string    // feedback_entries.changes
	Routine       string    // feedback_entries.routine
	Reactions     string    // feedback_entries.reactions
	OverallRating int       // feedback_entries.overall_rating
	CreatedAt     time.Time // feedback_entries.created_at
}
