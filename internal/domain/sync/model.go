package sync

// ChangeRecord - элемент потока изменений. Содержимое задачи или шаблона
// зашифровано на клиенте; сервер хранит и раздаёт байты, не заглядывая
// внутрь.
type ChangeRecord struct {
	UID        string `json:"uid"`
	Kind       string `json:"kind" enum:"task,shortcut"`
	Ciphertext string `json:"ciphertext"`
	Nonce      string `json:"nonce"`
	UpdatedAt  int64  `json:"updated_at"`
	Deleted    bool   `json:"deleted,omitempty"`
	// Revision присваивается сервером при приёме и монотонно растёт
	// в рамках аккаунта
	Revision int64 `json:"revision,omitempty"`
}

// ServiceConfig конфигурация сервиса синхронизации
type ServiceConfig struct {
	BatchSize    int `json:"batch_size"`
	MaxBatchSize int `json:"max_batch_size"`
}
