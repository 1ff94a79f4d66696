package invoice

import (
	"pharmadesk/internal/domain"
)

// Repository defines persistence for invoices.
type Repository = domain.DocumentRepository[*Invoice]
