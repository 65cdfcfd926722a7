package logging

// Standardized field names for structured logging.
const (
	FieldRunID      = "run_id"
	FieldAccount    = "account"
	FieldYear       = "year"
	FieldFile       = "file_path"
	FieldLine       = "line"
	FieldRule       = "rule"
	FieldCheckNo    = "checkno"
	FieldSink       = "sink"
	FieldOperation  = "operation"
	FieldStatus     = "status"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldCount      = "count"
	FieldPolicy     = "policy"
	FieldDriver     = "driver"
	FieldOutputFile = "output_file"
)
