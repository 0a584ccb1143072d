package models

// NotificationType identifies the event a notification reports.
// The set is fixed by the notification collaborator's contract.
type NotificationType string

const (
	NotifyGroupCreated  NotificationType = "group_created"
	NotifyExpenseAdded  NotificationType = "expense_added"
	NotifySettlement    NotificationType = "settlement"
	NotifyMonthlyReport NotificationType = "monthly_report"
)
