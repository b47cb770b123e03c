package dto

import (
	"driveease/shared/constant"
	"driveease/shared/model"
	"driveease/shared/timezone"
)

// Metadata is the audit block embedded in every resource response. Timestamps
// are rendered in the service timezone.
type Metadata struct {
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at"`
	CreatedBy  string `json:"created_by"`
	ModifiedBy string `json:"modified_by"`
}

func (m *Metadata) FromModel(mod model.Metadata) {
	*m = Metadata{
		CreatedAt:  timezone.Format(mod.CreatedAt, constant.DateFormat),
		ModifiedAt: timezone.Format(mod.ModifiedAt, constant.DateFormat),
		CreatedBy:  mod.CreatedBy,
		ModifiedBy: mod.ModifiedBy,
	}
}
