package core

// NoticeLevel is the severity of a notice shown to the operator.
type NoticeLevel string

const (
	NoticeLevelSuccess NoticeLevel = "success"
	NoticeLevelInfo    NoticeLevel = "info"
	NoticeLevelWarning NoticeLevel = "warning"
	NoticeLevelError   NoticeLevel = "error"
)

// NoticeDismissAfterMs is how long the presentation layer keeps a notice on screen.
const NoticeDismissAfterMs = 4000

// Notice is a transient, dismissable message for the operator.
type Notice struct {
	Level          NoticeLevel `json:"level"`
	Message        string      `json:"message"`
	DismissAfterMs int         `json:"dismissAfterMs"`
}

func newNotice(level NoticeLevel, message string) Notice {
	return Notice{Level: level, Message: message, DismissAfterMs: NoticeDismissAfterMs}
}

func SuccessNotice(message string) Notice { return newNotice(NoticeLevelSuccess, message) }
func InfoNotice(message string) Notice    { return newNotice(NoticeLevelInfo, message) }
func WarningNotice(message string) Notice { return newNotice(NoticeLevelWarning, message) }
func ErrorNotice(message string) Notice   { return newNotice(NoticeLevelError, message) }
