package notifications

const (
	TypeReviewReceived    = "review_received"
	TypeReportReady       = "report_ready"
	TypeAssignmentCreated = "assignment_created"
)
