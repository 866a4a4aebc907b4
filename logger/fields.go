package logger

// Standard field keys for bean registry logging.
const (
	FieldComponent = "component"
	FieldManager   = "manager"
	FieldEvent     = "event"
	FieldBean      = "bean"
	FieldNamespace = "namespace"
	FieldScope     = "scope"
	FieldType      = "type"
	FieldOldType   = "old_type"
	FieldIndex     = "index"
	FieldError     = "error"
	FieldCode      = "code"
	FieldDuration  = "duration_ms"
	FieldTraceID   = "trace_id"
	FieldSpanID    = "span_id"
)

// Fields builds a map from alternating key-value pairs. Non-string keys and a
// trailing key without value are dropped.
//
//	logger.Info("bean created", logger.Fields(logger.FieldBean, "hello", logger.FieldIndex, 0))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields describing a failed bean operation.
func ErrorFields(bean string, err error) map[string]any {
	return map[string]any{
		FieldBean:  bean,
		FieldError: err.Error(),
	}
}
