package util

import (
	"time"

	"github.com/google/uuid"
)

// Now devolve o instante atual em UTC.
var Now = func() time.Time {
	return time.Now().UTC()
}

// ParseOptionalUUID aceita string vazia como ausência de valor.
func ParseOptionalUUID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
