package authz

// PatientPolicy scopes patients to their own profile, appointments, reviews
// and files. Patients never delete reviews.
func PatientPolicy(p *Predicates) RolePolicy {
	return RolePolicy{
		ResourceProfile: {
			ActionRead:   Check(p.SelfOnly),
			ActionUpdate: Check(p.SelfOnly),
			ActionDelete: Check(p.SelfOnly),
		},
		ResourceHospital: {
			ActionRead: Allow(),
			ActionList: Allow(),
		},
		ResourceDoctor: {
			ActionRead: Allow(),
			ActionList: Allow(),
		},
		ResourceAppointment: {
			ActionCreate:         Allow(),
			ActionList:           Allow(),
			ActionRead:           Check(p.PatientOwnsAppointment),
			ActionUpdate:         Check(p.PatientOwnsAppointment),
			ActionDelete:         Check(p.PatientOwnsAppointment),
			ActionProcessPayment: Check(p.PatientOwnsAppointment),
		},
		ResourceReview: {
			ActionCreate: Allow(),
			ActionRead:   Allow(),
			ActionList:   Allow(),
			ActionUpdate: Check(p.PatientOwnsReview),
			ActionDelete: Deny(),
		},
		ResourcePatientNotes: {
			ActionRead: Check(p.SelfOnly),
		},
		ResourceFile: {
			ActionUpload: Allow(),
			ActionRead:   Check(p.SelfOnly),
			ActionDelete: Check(p.SelfOnly),
		},
		ResourceQRCode: {
			ActionGenerate: Check(p.PatientOwnsAppointment),
			ActionRead:     Check(p.PatientOwnsAppointment),
		},
		ResourceFavourite: {
			ActionCreate: Allow(),
			ActionList:   Allow(),
			ActionDelete: Allow(),
		},
		ResourceQA: {
			ActionCreate: Allow(),
			ActionRead:   Allow(),
			ActionList:   Allow(),
		},
		ResourceSearch: {
			ActionRead: Allow(),
		},
	}
}
