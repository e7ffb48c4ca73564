package controllers

import (
	"github.com/google/uuid"

	pkgerrors "github.com/adeyemiadedayo/kasuwa-backend/pkg/errors"
)

func parseUUIDField(raw, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+name).
			WithDetails(map[string]any{name: raw})
	}
	return id, nil
}
