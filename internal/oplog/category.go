package oplog

// Category — категория записи, определяет формат и уровень по умолчанию.
type Category string

const (
	CategoryBusiness    Category = "business"
	CategoryPerformance Category = "performance"
	CategoryError       Category = "error"
	CategoryDataAccess  Category = "data_access"
	CategorySecurity    Category = "security"
	CategoryAPICall     Category = "api_call"
)

// Ключи атрибутов записей фасада.
const (
	KeyCategory   = "category"
	KeyOperation  = "operation"
	KeyDurationMs = "duration_ms"
	KeySlow       = "slow"
	KeyDetails    = "details"
	KeyError      = "error"
	KeyErrorKind  = "error_kind"
	KeyAction     = "action"
	KeyResource   = "resource"
	KeyResourceID = "resource_id"
	KeyEvent      = "event"
	KeyAudit      = "audit"
	KeyMethod     = "method"
	KeyPath       = "path"
	KeyStatus     = "status"
)
