package events

// Topic constants for domain events emitted by the platform.
const (
	TopicSaleCompleted   = "sale.completed"
	TopicImportCommitted = "import.committed"
)
