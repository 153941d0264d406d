package model

// ReviewOwner identifies the patient who wrote a review.
type ReviewOwner struct {
	ReviewID string `db:"id"`
	AuthorID string `db:"patient_id"`
	DoctorID string `db:"doctor_id"`
}
