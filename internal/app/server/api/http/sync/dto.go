package sync

import "timekeeper/internal/domain/sync"

// Request/Response структуры для GetChanges
type getChangesInput struct {
	Since int64 `query:"since" minimum:"0" default:"0" doc:"Вернуть записи с ревизией больше указанной"`
	Limit int   `query:"limit" minimum:"1" maximum:"1000" default:"100"`
}

type getChangesOutput struct {
	Body sync.GetChangesResponse
}

// Request/Response структуры для PushChanges
type pushChangesInput struct {
	Body sync.PushChangesRequest
}

type pushChangesOutput struct {
	Body sync.PushChangesResponse
}
