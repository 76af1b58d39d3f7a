package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldError      = "error"
	FieldCollection = "collection"
	FieldRecordID   = "record_id"
	FieldUserID     = "user_id"
	FieldBackend    = "backend"
	FieldState      = "state"
	FieldBalance    = "balance"
	FieldDuration   = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentStore   = "store"
	ComponentBackend = "backend"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentStorage = "storage"
)

// Operations defines standard operation names
const (
	OpInitialize = "initialize"
	OpRefetch    = "refetch"
	OpApply      = "apply"
	OpReset      = "reset"
	OpBackfill   = "backfill"
	OpPublish    = "publish"
	OpConsume    = "consume"
	OpShutdown   = "shutdown"
	OpStartup    = "startup"
)
