package notifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/adegadigital/adega-backend/pkg/enums"
)

// StatusEvent is the payload pushed on a user's order-status channel.
type StatusEvent struct {
	OrderID   uuid.UUID         `json:"order_id"`
	Status    enums.OrderStatus `json:"status"`
	ChangedAt time.Time         `json:"changed_at"`
}

// statusTitles maps order statuses to the storefront notification copy.
var statusTitles = map[enums.OrderStatus]string{
	enums.OrderStatusPending:    "Pedido recebido",
	enums.OrderStatusConfirmed:  "Pedido confirmado",
	enums.OrderStatusPreparing:  "Pedido em preparação",
	enums.OrderStatusDelivering: "Pedido saiu para entrega",
	enums.OrderStatusDelivered:  "Pedido entregue",
	enums.OrderStatusCancelled:  "Pedido cancelado",
}

// TitleFor returns the user-facing title for a status change.
func TitleFor(status enums.OrderStatus) string {
	if title, ok := statusTitles[status]; ok {
		return title
	}
	return "Atualização do pedido"
}
