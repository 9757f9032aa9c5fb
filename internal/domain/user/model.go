package user

import "time"

// User - аккаунт синхронизации. Proof - bcrypt-хэш от secret_proof,
// который клиент выводит из своей парольной фразы; сама фраза и ключ
// шифрования на сервер никогда не попадают.
type User struct {
	ID        int
	Email     string
	Proof     string
	CreatedAt time.Time
}
