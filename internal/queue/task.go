package queue

// TaskKind distinguishes the direct notifications the worker delivers.
type TaskKind string

const (
	// TaskKindAck acknowledges a fresh submission to the reporter.
	TaskKindAck TaskKind = "dm_ack"
	// TaskKindReply relays an administrator reply to the reporter.
	TaskKindReply TaskKind = "dm_reply"
)

// NotifyTask is a best-effort direct notification to a reporter. The task
// carries only identifiers: the worker re-fetches the report so it never acts
// on a stale snapshot.
type NotifyTask struct {
	Kind     TaskKind
	ReportID int64
	UserID   int64
	TraceID  *string
	Attempt  int
}
