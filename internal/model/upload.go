package model

import "time"

// UploadRecord describes one sanitized progress photo in the
// `upload_records` table. StorageKey is an opaque object-store
// handle (never a filesystem path); retrieval happens through
// short-lived presigned URLs minted at list time. Verified is the
// only field mutable after creation and only an administrator may
// set it.
//
// Fields:
//  ID         – primary key identifier.
//  ProfileID  – owning profile.
//  WeekNumber – study week of the upload (1..52 to allow backfill).
//  StorageKey – object key under the study bucket.
//  Consent    – participant consented to research use of the image.
//  Verified   – administrator confirmed the image is usable.
//  CreatedAt  – creation timestamp.
type UploadRecord struct {
	ID         uint64    // upload_records.id
	ProfileID  uint64    // upload_records.profile_id
	WeekNumber int       // upload_records.week_number
	StorageKey string    // upload_records.storage_key
	Consent    bool      // upload_records.consent
	Verified   bool      // upload_records.verified
	CreatedAt  time.Time // upload_records.created_at
}
