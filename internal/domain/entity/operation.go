// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// OperationKind classifies a single user operation against the catalog.
type OperationKind string

const (
	// KindRead covers lookups such as getAllProducts and getProductById.
	KindRead OperationKind = "READ"
	// KindWrite covers addProduct, updateProduct and deleteProduct.
	KindWrite OperationKind = "WRITE"
	// KindSearchExpensive marks a view of a product priced at or above the
	// expensive threshold.
	KindSearchExpensive OperationKind = "SEARCH_EXPENSIVE"
)

// ParseOperationKind converts a raw string into an OperationKind.
func ParseOperationKind(s string) (OperationKind, error) {
	switch OperationKind(s) {
	case KindRead, KindWrite, KindSearchExpensive:
		return OperationKind(s), nil
	default:
		return "", errors.Errorf("unknown operation kind: %s", s)
	}
}

// OperationRecord is one immutable fact about a user action. It is the
// atomic unit of a profile's history and is copied by value whenever a
// profile migrates between variants.
type OperationRecord struct {
	ID            uuid.UUID     `json:"id"`                     // Unique identifier for this record.
	OperationName string        `json:"operationName"`          // Business operation, e.g. "getProductById".
	Kind          OperationKind `json:"operationType"`          // READ, WRITE or SEARCH_EXPENSIVE.
	Timestamp     time.Time     `json:"timestamp"`              // When the operation was performed.
	UserName      string        `json:"userName"`               // Display name of the acting user.
	UserEmail     string        `json:"userEmail"`              // Stable user key.
	ProductID     *string       `json:"productId,omitempty"`    // Touched product, if any.
	ProductName   *string       `json:"productName,omitempty"`  // Name of the touched product, if any.
	ProductPrice  *float64      `json:"productPrice,omitempty"` // Price of the touched product, if any.
	Note          *string       `json:"note,omitempty"`         // Free-form context, e.g. an error message.
}
