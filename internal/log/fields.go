package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldReport    = "report"
	FieldSource    = "source"
	FieldPath      = "path"
	FieldQueryFile = "query_file"
	FieldEndpoint  = "endpoint"
	FieldTriples   = "triples"
	FieldRows      = "rows"
	FieldRecords   = "records"
	FieldDropped   = "dropped"
	FieldBucket    = "bucket"
	FieldMonth     = "month"
	FieldDuration = "duration_ms"
	FieldError    = "error"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentLoader    = "loader"
	ComponentQuery     = "query"
	ComponentClassify  = "classify"
	ComponentAggregate = "aggregate"
	ComponentPipeline  = "pipeline"
	ComponentEndpoint  = "endpoint"
	ComponentReport    = "report"
)
