package domain

// NotificationLevel drives how the UI renders a toast.
type NotificationLevel string

const (
	NotifySuccess NotificationLevel = "success"
	NotifyError   NotificationLevel = "error"
	NotifyInfo    NotificationLevel = "info"
)

// Notification is a toast-style message produced by a user action.
type Notification struct {
	Level       NotificationLevel `json:"level"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
}

// CompletionSignal announces that a student finished a question.
type CompletionSignal struct {
	StudentID  string `json:"studentId"`
	QuestionID string `json:"questionId"`
}
