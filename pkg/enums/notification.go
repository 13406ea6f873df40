package enums

// NotificationTemplate names an outbound notification template. The delivery
// channel is owned by the notification sink; services only pick a template
// and supply context.
type NotificationTemplate string

const (
	NotificationItemListed       NotificationTemplate = "item_listed"
	NotificationItemRecalled     NotificationTemplate = "item_recalled"
	NotificationItemDelisted     NotificationTemplate = "item_delisted"
	NotificationItemCollected    NotificationTemplate = "item_collected"
	NotificationItemAbandoned    NotificationTemplate = "item_abandoned"
	NotificationItemSold         NotificationTemplate = "item_sold"
	NotificationSaleConfirmation NotificationTemplate = "sale_confirmation"
	NotificationStorageFee       NotificationTemplate = "storage_fee_charged"
	NotificationNewCollectionPin NotificationTemplate = "new_collection_pin"
	NotificationSuppliesShipped  NotificationTemplate = "supplies_shipped"
)

// String implements fmt.Stringer.
func (t NotificationTemplate) String() string {
	return string(t)
}
