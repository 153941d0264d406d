package authz

import "net/http"

// ResourceType tags what a route guards. New types are added here and in the
// role policies, never as branches in handlers.
type ResourceType string

const (
	ResourceProfile      ResourceType = "profile"
	ResourceHospital     ResourceType = "hospital"
	ResourceDoctor       ResourceType = "doctor"
	ResourceAppointment  ResourceType = "appointment"
	ResourceReview       ResourceType = "review"
	ResourcePatientNotes ResourceType = "patient_notes"
	ResourceFile         ResourceType = "file"
	ResourceQRCode       ResourceType = "qr_code"
	ResourceFavourite    ResourceType = "favourite"
	ResourceQA           ResourceType = "qa"
	ResourceSearch       ResourceType = "search"
	ResourceAdmin        ResourceType = "admin"
)

// Action is scoped to a ResourceType.
type Action string

const (
	ActionCreate         Action = "create"
	ActionRead           Action = "read"
	ActionList           Action = "list"
	ActionUpdate         Action = "update"
	ActionDelete         Action = "delete"
	ActionUpload         Action = "upload"
	ActionProcessPayment Action = "process_payment"
	ActionGenerate       Action = "generate"
	ActionModerate       Action = "moderate"
	ActionReadByDoctor   Action = "read_by_doctor"
	ActionApprove        Action = "approve"
)

// InferAction maps an HTTP method onto the CRUD action a route means when it
// does not declare one. Methods without a CRUD meaning infer nothing.
func InferAction(method string) Action {
	switch method {
	case http.MethodGet, http.MethodHead:
		return ActionRead
	case http.MethodPost:
		return ActionCreate
	case http.MethodPut, http.MethodPatch:
		return ActionUpdate
	case http.MethodDelete:
		return ActionDelete
	default:
		return ""
	}
}
