package models

// Trip representa una salida próxima de bus en un paradero de NextRide
type Trip struct {
	Route             string `json:"route" validate:"required"`      // Código de ruta (ej: "7", "201")
	RouteName         string `json:"route_name" validate:"required"` // Nombre de la ruta (ej: "King")
	DestinationDetail string `json:"destination_detail"`             // Detalle del destino, puede venir vacío
	Departure         string `json:"departure" validate:"required"`  // Texto libre: "5 min", "14:32"
	IsRealTime        bool   `json:"is_real_time"`                   // true si la hora viene del seguimiento en vivo
}

// ScheduleResponse es la respuesta de GET /api/schedule/:stopNumber
type ScheduleResponse struct {
	StopNumber int    `json:"stop_number"`
	Trips      []Trip `json:"trips"`
}

// ErrorResponse es el cuerpo de todas las respuestas de error
type ErrorResponse struct {
	Detail string `json:"detail"`
}
