package dto

// ExportRequest selects an export format
type ExportRequest struct {
	Format   string `query:"format" validate:"max=8"`
	Approved bool   `query:"approved"`
}

// ExportFile is a generated export ready to stream
type ExportFile struct {
	FileName    string
	ContentType string
	Content     []byte
	Rows        int
}

// ExportLogRequest is an export action reported by a client application
type ExportLogRequest struct {
	UserID  uint   `json:"user_id"`
	Action  string `json:"action"`
	Details string `json:"details"`
}

// ExportLogResponse confirms a stored export log
type ExportLogResponse struct {
	ID uint `json:"id"`
}
