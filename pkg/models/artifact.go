package models

import (
	"time"

	"github.com/google/uuid"
)

// ArtifactType is one of the fixed document kinds required before launch.
// Each kind is owned by the role responsible for producing it.
type ArtifactType string

const (
	ArtifactProductPassport   ArtifactType = "product_passport"
	ArtifactUnderwritingGuide ArtifactType = "underwriting_guide"
	ArtifactTariffCalculation ArtifactType = "tariff_calculation"
	ArtifactInsuranceRules    ArtifactType = "insurance_rules"
	ArtifactContractForm      ArtifactType = "contract_form"
)

// ArtifactOwners maps each required artifact kind to its owning role.
var ArtifactOwners = map[ArtifactType]Role{
	ArtifactProductPassport:   RoleProductOwner,
	ArtifactUnderwritingGuide: RoleUnderwriter,
	ArtifactTariffCalculation: RoleActuary,
	ArtifactInsuranceRules:    RoleMethodologist,
	ArtifactContractForm:      RoleMethodologist,
}

// AllArtifactTypes lists the required artifact kinds in display order.
var AllArtifactTypes = []ArtifactType{
	ArtifactProductPassport,
	ArtifactUnderwritingGuide,
	ArtifactTariffCalculation,
	ArtifactInsuranceRules,
	ArtifactContractForm,
}

// IsValidArtifactType checks if the given type is one of the required kinds.
func IsValidArtifactType(t ArtifactType) bool {
	_, ok := ArtifactOwners[t]
	return ok
}

// Artifact records an uploaded document of a required kind for a product.
type Artifact struct {
	ProductID  uuid.UUID    `json:"product_id"`
	Type       ArtifactType `json:"type"`
	FileName   string       `json:"file_name"`
	UploadedBy string       `json:"uploaded_by"`
	UploadedAt time.Time    `json:"uploaded_at"`
}
