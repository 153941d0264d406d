package model

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// ParseVerificationStatus maps a stored value onto the enum. Unknown values
// read as pending so they never pass an approval check.
func ParseVerificationStatus(s string) VerificationStatus {
	switch VerificationStatus(s) {
	case VerificationApproved:
		return VerificationApproved
	case VerificationRejected:
		return VerificationRejected
	default:
		return VerificationPending
	}
}
