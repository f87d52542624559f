package doctor

import (
	"time"

	"github.com/google/uuid"
)

type Doctor struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateInput struct {
	Name      string  `json:"name" validate:"notblank"`
	Specialty string  `json:"specialty" validate:"notblank"`
	Phone     *string `json:"phone,omitempty"`
}
