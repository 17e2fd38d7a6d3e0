package logging

const (
	// FieldComponent names the subsystem that emitted a log line.
	FieldComponent = "component"
	// FieldStage names the pipeline stage (classify, catalog-index, catalog-match).
	FieldStage = "stage"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact states the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldDecisionType names the classification decision being logged.
	FieldDecisionType = "decision_type"
	FieldRegnum       = "regnum"
	FieldUUID         = "uuid"
	FieldBucket       = "bucket"
	FieldDisposition  = "disposition"
	FieldRecords      = "records"
	FieldRate         = "records_per_sec"
	FieldPath         = "path"
	FieldLine         = "line"
)
