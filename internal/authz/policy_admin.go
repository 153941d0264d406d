package authz

// AdminPolicy grants admins full trust over the platform. Hospital mutations
// are the exception: an admin may only update or delete its own hospital.
// Admins never author reviews.
func AdminPolicy(p *Predicates) RolePolicy {
	return RolePolicy{
		ResourceProfile: {
			ActionRead:   Allow(),
			ActionUpdate: Allow(),
			ActionDelete: Allow(),
		},
		ResourceHospital: {
			ActionCreate: Allow(),
			ActionRead:   Allow(),
			ActionList:   Allow(),
			ActionUpdate: Check(p.HospitalAdmin),
			ActionDelete: Check(p.HospitalAdmin),
		},
		ResourceDoctor: {
			ActionCreate:  Allow(),
			ActionRead:    Allow(),
			ActionList:    Allow(),
			ActionUpdate:  Allow(),
			ActionDelete:  Allow(),
			ActionUpload:  Allow(),
			ActionApprove: Allow(),
		},
		ResourceAppointment: {
			ActionCreate: Allow(),
			ActionRead:   Allow(),
			ActionList:   Allow(),
			ActionUpdate: Allow(),
			ActionDelete: Allow(),
		},
		ResourceReview: {
			ActionCreate:   Deny(),
			ActionRead:     Allow(),
			ActionList:     Allow(),
			ActionUpdate:   Deny(),
			ActionDelete:   Allow(),
			ActionModerate: Allow(),
		},
		ResourcePatientNotes: {
			ActionRead: Allow(),
			ActionList: Allow(),
		},
		ResourceFile: {
			ActionUpload: Allow(),
			ActionRead:   Allow(),
			ActionDelete: Allow(),
		},
		ResourceQRCode: {
			ActionGenerate: Allow(),
			ActionRead:     Allow(),
		},
		ResourceFavourite: {
			ActionList: Allow(),
		},
		ResourceQA: {
			ActionRead:     Allow(),
			ActionList:     Allow(),
			ActionUpdate:   Allow(),
			ActionDelete:   Allow(),
			ActionModerate: Allow(),
		},
		ResourceSearch: {
			ActionRead: Allow(),
		},
		ResourceAdmin: {
			ActionCreate:  Allow(),
			ActionRead:    Allow(),
			ActionList:    Allow(),
			ActionUpdate:  Allow(),
			ActionDelete:  Allow(),
			ActionApprove: Allow(),
		},
	}
}
