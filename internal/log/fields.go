package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldAction      = "action"
	FieldCategory    = "category"
	FieldAmount      = "amount"
	FieldAmountCents = "amount_cents"
	FieldExpenseID   = "expense_id"
	FieldDate        = "date"
	FieldTranscript  = "transcript"
	FieldBudgetLimit = "budget_limit"
	FieldSheetsRef   = "sheets_ref"
)

// Components defines standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentIntent  = "intent"
	ComponentVoice   = "voice"
	ComponentCommand = "command"
	ComponentStorage = "storage"
	ComponentBudget  = "budget"
	ComponentSummary = "summary"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentCache   = "cache"
)

// Operations defines standard operation names.
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpDelete   = "delete"
	OpList     = "list"
	OpParse    = "parse"
	OpExport   = "export"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder for structured log fields.
type LogFields map[string]any

// NewFields creates a new LogFields instance.
func NewFields() LogFields {
	return make(LogFields)
}

// WithRequestID adds the request ID field.
func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

// WithError adds the error field when err is non-nil.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds the operation field.
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithIntent adds the fields extracted from one parsed utterance.
func (f LogFields) WithIntent(action string, amountCents int64, category string) LogFields {
	f[FieldAction] = action
	f[FieldAmountCents] = amountCents
	f[FieldCategory] = category
	return f
}

// WithExpense adds expense identity fields.
func (f LogFields) WithExpense(id int64, amountCents int64, category string) LogFields {
	f[FieldExpenseID] = id
	f[FieldAmountCents] = amountCents
	f[FieldCategory] = category
	return f
}

// ToSlice converts LogFields to a flat key/value slice for slog.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
