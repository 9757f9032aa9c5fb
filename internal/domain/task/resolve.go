package task

// Winner - исход разрешения конфликта между двумя версиями записи
type Winner int

const (
	WinnerLocal Winner = iota
	WinnerRemote
)

// Candidate - версия записи, участвующая в разрешении конфликта.
// Fingerprint - хеш зашифрованного представления; у разных устройств
// он различается даже при одинаковом содержимом, поэтому пара
// (local, remote) даёт одинаковый результат на обоих устройствах.
type Candidate struct {
	UID         string
	UpdatedAt   int64
	Deleted     bool
	Fingerprint string
}

// Resolve выбирает победителя детерминированно: побеждает версия с
// более поздним updated_at; при равенстве - с лексикографически большим
// uid, затем с большим fingerprint. Надгробия участвуют наравне с
// обычными записями: удаление может проиграть более позднему
// редактированию и наоборот.
func Resolve(local, remote Candidate) Winner {
	if local.UpdatedAt != remote.UpdatedAt {
		if remote.UpdatedAt > local.UpdatedAt {
			return WinnerRemote
		}
		return WinnerLocal
	}
	if local.UID != remote.UID {
		if remote.UID > local.UID {
			return WinnerRemote
		}
		return WinnerLocal
	}
	if remote.Fingerprint > local.Fingerprint {
		return WinnerRemote
	}
	return WinnerLocal
}
