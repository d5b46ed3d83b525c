package enums

// NotificationType categorizes persisted user notifications.
type NotificationType string

const (
	NotificationTypeOrderStatus NotificationType = "order_status"
	NotificationTypeLoyalty     NotificationType = "loyalty"
	NotificationTypePromo       NotificationType = "promo"
)

func (n NotificationType) String() string {
	return string(n)
}

func (n NotificationType) IsValid() bool {
	switch n {
	case NotificationTypeOrderStatus, NotificationTypeLoyalty, NotificationTypePromo:
		return true
	}
	return false
}
