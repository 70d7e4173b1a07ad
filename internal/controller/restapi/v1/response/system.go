package response

import "time"

type Health struct {
	Status    string    `json:"status" example:"ok"`
	Timestamp time.Time `json:"timestamp"`
}

type Config struct {
	Model   string `json:"model" example:"google/gemini-2.5-flash-image-preview"`
	Mock    bool   `json:"mock"`
	Host    string `json:"host" example:"127.0.0.1"`
	Port    int    `json:"port" example:"3000"`
	Storage string `json:"storage" example:"memory"`
	TTLMs   int64  `json:"ttl_ms" example:"600000"`
}
