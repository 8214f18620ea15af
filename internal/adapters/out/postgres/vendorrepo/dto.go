// Package vendorrepo persists vendor aggregates and their delivery rosters with GORM.
package vendorrepo

import (
	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/model/vendor"

	"github.com/google/uuid"
)

// VendorDTO is the vendors row. OwnerKey is unique: one vendor per owner.
type VendorDTO struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID  string
	OwnerKey string `gorm:"uniqueIndex"`
	Name     string
	Phone    string
	Roster   []RosterEntryDTO `gorm:"foreignKey:VendorID;references:ID;constraint:OnDelete:CASCADE"`
}

func (VendorDTO) TableName() string {
	return "vendors"
}

// RosterEntryDTO links a delivery agent to a vendor.
type RosterEntryDTO struct {
	VendorID uuid.UUID `gorm:"type:uuid;primaryKey"`
	AgentKey string    `gorm:"primaryKey;index"`
	AgentRef string
	Position int
}

func (RosterEntryDTO) TableName() string {
	return "vendor_roster"
}

func fromDomain(v *vendor.Vendor) VendorDTO {
	dto := VendorDTO{
		ID:       v.ID().Bytes(),
		OwnerID:  v.OwnerID().String(),
		OwnerKey: v.OwnerID().Canonical(),
		Name:     v.Name(),
		Phone:    v.Phone(),
	}
	for i, agent := range v.Roster() {
		dto.Roster = append(dto.Roster, RosterEntryDTO{
			VendorID: dto.ID,
			AgentKey: agent.Canonical(),
			AgentRef: agent.String(),
			Position: i,
		})
	}
	return dto
}

func toDomain(dto VendorDTO) (*vendor.Vendor, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	roster := make([]kernel.Identity, 0, len(dto.Roster))
	for _, entry := range dto.Roster {
		roster = append(roster, kernel.NewIdentity(entry.AgentRef))
	}

	return vendor.RestoreVendor(id, kernel.NewIdentity(dto.OwnerID), dto.Name, dto.Phone, roster)
}
