package sync

// DTO (Data Transfer Objects) для API синхронизации

// GetChangesRequest запрос на получение изменений после указанной ревизии
type GetChangesRequest struct {
	Since int64 `json:"since" minimum:"0" default:"0"`
	Limit int   `json:"limit" minimum:"1" maximum:"1000" default:"100"`
}

// GetChangesResponse ответ с изменениями
type GetChangesResponse struct {
	Status       string         `json:"status"`
	Error        string         `json:"error,omitempty"`
	Records      []ChangeRecord `json:"records,omitempty"`
	HasMore      bool           `json:"has_more,omitempty"`
	HeadRevision int64          `json:"head_revision"`
}

// PushChangesRequest запрос на приём пакета изменений
type PushChangesRequest struct {
	Records []ChangeRecord `json:"records"`
}

// AcceptedRecord подтверждение приёма одной записи
type AcceptedRecord struct {
	UID       string `json:"uid"`
	UpdatedAt int64  `json:"updated_at"`
	Revision  int64  `json:"revision"`
}

// PushChangesResponse ответ на приём пакета изменений
type PushChangesResponse struct {
	Status       string           `json:"status"`
	Error        string           `json:"error,omitempty"`
	Accepted     []AcceptedRecord `json:"accepted,omitempty"`
	HeadRevision int64            `json:"head_revision"`
}
