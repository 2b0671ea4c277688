package enums

import "fmt"

// ProductStatus controls storefront visibility.
type ProductStatus string

const (
	ProductStatusDraft   ProductStatus = "draft"
	ProductStatusPublish ProductStatus = "publish"
)

// IsValid reports whether the value is a known ProductStatus.
func (p ProductStatus) IsValid() bool {
	return p == ProductStatusDraft || p == ProductStatusPublish
}

// ParseProductStatus converts raw input into a ProductStatus.
func ParseProductStatus(value string) (ProductStatus, error) {
	status := ProductStatus(value)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid product status %q", value)
	}
	return status, nil
}
