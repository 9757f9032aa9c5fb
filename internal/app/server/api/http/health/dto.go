package health

type Input struct{}

type Output struct {
	Body Response
}

// Response — ответ liveness-пробы: живо ли API и достижима ли база
type Response struct {
	Status   string `json:"status" example:"Ok" doc:"Состояние сервиса"`
	Database string `json:"database" example:"Ok" doc:"Доступность базы данных"`
}
