package kafka

// Topics consumed from the workforce services.
const (
	TopicTaskAssigned    = "task.assigned"
	TopicShiftUpdated    = "shift.updated"
	TopicReportSubmitted = "report.submitted"
)

// Topics published by the gateway.
const (
	TopicPresenceChanged = "presence.changed"
)

// Websocket event names the consumed topics are forwarded as.
const (
	EventTaskAssigned    = "task_assigned"
	EventShiftUpdated    = "shift_updated"
	EventReportSubmitted = "report_submitted"
)
