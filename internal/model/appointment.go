package model

// AppointmentParticipants is the owner view of an appointment: the doctor
// who holds it and the patient who booked it.
type AppointmentParticipants struct {
	AppointmentID string `db:"id"`
	DoctorID      string `db:"doctor_id"`
	PatientID     string `db:"patient_id"`
}
