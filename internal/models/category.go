package models

// ServiceCategory is a named type of work the platform brokers, e.g. "Plumbing".
type ServiceCategory struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text;not null" json:"description"`
}

// ProviderCategory is a priced offering: one provider selling one category.
// A provider offers a given category at most once.
type ProviderCategory struct {
	ID         uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	ProviderID uint    `gorm:"not null;index;uniqueIndex:uq_provider_category" json:"provider_id"`
	CategoryID uint    `gorm:"not null;index;uniqueIndex:uq_provider_category" json:"category_id"`
	PriceRate  float64 `gorm:"not null" json:"price_rate"`

	Category *ServiceCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
