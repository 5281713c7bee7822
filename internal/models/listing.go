package models

import (
	"time"

	"github.com/google/uuid"
)

// Типы объявлений мастеров.
const (
	ListingTypeService       = "service"
	ListingTypeCustomService = "custom_service"
)

// ValidListingTypes список валидных типов объявлений
var ValidListingTypes = map[string]struct{}{
	ListingTypeService:       {},
	ListingTypeCustomService: {},
}

// Listing описывает предложение мастера, по которому оформляются заказы.
type Listing struct {
	ID               uuid.UUID `db:"id" json:"id"`
	ProviderID       uuid.UUID `db:"provider_id" json:"provider_id"`
	Title            string    `db:"title" json:"title"`
	Description      *string   `db:"description" json:"description,omitempty"`
	ListingType      string    `db:"listing_type" json:"listing_type"`
	ProofingRequired bool      `db:"proofing_required" json:"proofing_required"`
	Price            float64   `db:"price" json:"price"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// ProofingPolicy определяет, требуется ли для заказа согласование макета.
// Политика вычисляется один раз из настроек объявления и дальше не меняется,
// поэтому заказы, созданные до включения согласования, им не затрагиваются.
type ProofingPolicy struct {
	required bool
}

func NewProofingPolicy(proofingRequired bool) ProofingPolicy {
	return ProofingPolicy{required: proofingRequired}
}

// RequiresApprovedProof сообщает, закрыт ли переход к производству и отгрузке
// до одобрения последней версии макета.
func (p ProofingPolicy) RequiresApprovedProof() bool {
	return p.required
}
