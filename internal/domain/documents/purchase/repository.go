package purchase

import (
	"pharmadesk/internal/domain"
)

// Repository defines persistence for purchases.
type Repository = domain.DocumentRepository[*Purchase]
