package authz

// DoctorPolicy scopes doctors to their own profile, their own appointments
// and the notes of patients currently assigned to them.
func DoctorPolicy(p *Predicates) RolePolicy {
	return RolePolicy{
		ResourceProfile: {
			ActionRead:   Check(p.SelfOnly),
			ActionUpdate: Check(p.SelfOnly),
		},
		ResourceHospital: {
			ActionRead: Allow(),
			ActionList: Allow(),
		},
		ResourceDoctor: {
			ActionRead:   Allow(),
			ActionList:   Allow(),
			ActionUpdate: Check(p.SelfOnly),
			ActionUpload: Check(p.SelfOnly),
		},
		ResourceAppointment: {
			ActionCreate: Deny(),
			ActionList:   Allow(),
			ActionRead:   Check(p.DoctorOwnsAppointment),
			ActionUpdate: Check(p.DoctorOwnsAppointment),
			ActionDelete: Deny(),
		},
		ResourcePatientNotes: {
			ActionCreate:       Check(p.DoctorAssignedToPatient),
			ActionRead:         Check(p.DoctorAssignedToPatient),
			ActionReadByDoctor: Check(p.DoctorAssignedToPatient),
			ActionUpdate:       Check(p.DoctorAssignedToPatient),
			ActionDelete:       Deny(),
		},
		ResourceReview: {
			ActionRead:     Allow(),
			ActionList:     Allow(),
			ActionCreate:   Deny(),
			ActionUpdate:   Deny(),
			ActionDelete:   Deny(),
			ActionModerate: Deny(),
		},
		ResourceFile: {
			ActionUpload: Allow(),
			ActionRead:   Check(p.SelfOnly),
			ActionDelete: Check(p.SelfOnly),
		},
		ResourceQRCode: {
			ActionRead: Check(p.DoctorOwnsAppointment),
		},
		ResourceQA: {
			ActionCreate: Allow(),
			ActionRead:   Allow(),
			ActionList:   Allow(),
			ActionUpdate: Deny(),
			ActionDelete: Deny(),
		},
		ResourceSearch: {
			ActionRead: Allow(),
		},
	}
}
