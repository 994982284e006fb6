package v1

// DeployVMRequest provisions one VM for a student. Node is optional: when
// empty the configured placement policy selects an eligible node carrying the
// template.
type DeployVMRequest struct {
	StudentID  int64  `json:"student_id" binding:"required"`
	TemplateID int64  `json:"template_id" binding:"required"`
	Node       string `json:"node"`
}

// BulkDeployVMRequest provisions VMs for many students. FailFast is required
// so every caller chooses the batch failure policy explicitly:
// true rolls back the whole batch on the first failure, false records the
// failure and continues.
type BulkDeployVMRequest struct {
	StudentIDs []int64 `json:"student_ids" binding:"required,min=1"`
	TemplateID int64   `json:"template_id" binding:"required"`
	FailFast   *bool   `json:"fail_fast" binding:"required"`
}

type BulkDeployFailure struct {
	StudentID int64  `json:"student_id"`
	Error     string `json:"error"`
}

type BulkDeployResponseData struct {
	Succeeded []VMDetail          `json:"succeeded"`
	Failed    []BulkDeployFailure `json:"failed"`
}

type VMDetail struct {
	Id           int64  `json:"id"`
	StudentID    int64  `json:"student_id"`
	VMID         uint32 `json:"vmid"`
	NodeName     string `json:"node_name"`
	TemplateName string `json:"template_name"`
	Storage      string `json:"storage"`
	Status       string `json:"status"`
	IPAddress    string `json:"ip_address"`
	ConsoleURL   string `json:"console_url"`
}

type ListVMRequest struct {
	StudentID   int64 `form:"student_id"`
	ClassroomID int64 `form:"classroom_id"`
}

type ListVMResponse struct {
	Response
	Data []VMDetail
}

type RefreshStatusResponseData struct {
	Status string `json:"status"`
	// Raw backend status string, returned for diagnostics when it does not map
	// onto the status enum.
	RawStatus string `json:"raw_status,omitempty"`
}

type GetVMConsoleResponseData struct {
	ConsoleURL string `json:"console_url"`
	WSToken    string `json:"ws_token"`
}

type PlanDeploymentRequest struct {
	StudentIDs []int64 `json:"student_ids" binding:"required,min=1"`
	TemplateID int64   `json:"template_id" binding:"required"`
}

type PlanAssignment struct {
	StudentID int64  `json:"student_id"`
	Node      string `json:"node"`
	Storage   string `json:"storage"`
}
