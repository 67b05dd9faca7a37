package sheet

// Nombres de las tablas del almacén.
const (
	TableRequests  = "Part Requests"
	TableOrders    = "Orders"
	TableInventory = "Inventory"
	TableUsers     = "Users"
)

// Columnas lógicas. Varias se comparten entre tablas (SKU, Part Name, Notes).
const (
	ColRequestID         Column = "request_id"
	ColTimestamp         Column = "timestamp"
	ColRequester         Column = "requester"
	ColSubsystem         Column = "subsystem"
	ColPartName          Column = "part_name"
	ColSKU               Column = "sku"
	ColPartLink          Column = "part_link"
	ColQuantity          Column = "quantity"
	ColPriority          Column = "priority"
	ColNeededBy          Column = "needed_by"
	ColInventoryOnHand   Column = "inventory_on_hand"
	ColVendorStock       Column = "vendor_stock"
	ColEstUnitPrice      Column = "est_unit_price"
	ColTotalEstCost      Column = "total_est_cost"
	ColMaxBudget         Column = "max_budget"
	ColBudgetStatus      Column = "budget_status"
	ColStatus            Column = "status"
	ColNotes             Column = "notes"
	ColExpeditedShipping Column = "expedited_shipping"

	ColOrderID        Column = "order_id"
	ColIncludedIDs    Column = "included_request_ids"
	ColVendor         Column = "vendor"
	ColUnitPrice      Column = "unit_price"
	ColTotalCost      Column = "total_cost"
	ColOrderDate      Column = "order_date"
	ColShippingMethod Column = "shipping_method"
	ColTracking       Column = "tracking"
	ColETA            Column = "eta"
	ColReceivedDate   Column = "received_date"

	ColLocation    Column = "location"
	ColLastUpdated Column = "last_updated"

	ColUsername     Column = "username"
	ColPasswordHash Column = "password_hash"
	ColRole         Column = "role"
	ColActive       Column = "active"
)

var skuSpec = ColumnSpec{
	Column: ColSKU, Canonical: "SKU",
	Contains: []string{"sku", "part number", "part #", "part no", "mpn"},
}

var partNameSpec = ColumnSpec{
	Column: ColPartName, Canonical: "Part Name",
	Contains: []string{"part name", "item name", "item", "description"},
}

var notesSpec = ColumnSpec{
	Column: ColNotes, Canonical: "Mentor Notes",
	Exact:    []string{"Notes"},
	Contains: []string{"notes", "comments"},
}

// RequestsSchema tabla Part Requests.
var RequestsSchema = Schema{
	Table: TableRequests,
	Columns: []ColumnSpec{
		{Column: ColRequestID, Canonical: "Request ID", Contains: []string{"request id", "req id", "request #"}},
		{Column: ColTimestamp, Canonical: "Timestamp", Contains: []string{"timestamp", "created", "submitted on"}},
		{Column: ColRequester, Canonical: "Requester", Contains: []string{"requester", "requested by", "student"}},
		{Column: ColSubsystem, Canonical: "Subsystem", Contains: []string{"subsystem", "system", "mechanism"}},
		partNameSpec,
		skuSpec,
		{Column: ColPartLink, Canonical: "Part Link", Contains: []string{"link", "url"}},
		{Column: ColQuantity, Canonical: "Quantity", Contains: []string{"quantity", "qty"}, Exclude: []string{"on hand"}},
		{Column: ColPriority, Canonical: "Priority", Contains: []string{"priority", "urgency"}},
		{Column: ColNeededBy, Canonical: "Needed By", Contains: []string{"needed by", "need by", "due"}},
		{Column: ColInventoryOnHand, Canonical: "Inventory On-Hand", Contains: []string{"on hand", "inventory"}},
		{Column: ColVendorStock, Canonical: "Vendor Stock", Contains: []string{"vendor stock", "stock"}},
		{Column: ColEstUnitPrice, Canonical: "Est. Unit Price", Contains: []string{"unit price", "price"}, Exclude: []string{"total"}},
		{Column: ColTotalEstCost, Canonical: "Total Est. Cost", Contains: []string{"total", "cost"}, Exclude: []string{"budget"}},
		{Column: ColMaxBudget, Canonical: "Max Budget", Contains: []string{"max budget", "budget"}, Exclude: []string{"status"}},
		{Column: ColBudgetStatus, Canonical: "Budget Status", Contains: []string{"budget status"}},
		{
			Column: ColStatus, Canonical: "Request Status",
			Exact:    []string{"Status"},
			Contains: []string{"request status", "status"},
			Exclude:  []string{"budget", "order"},
		},
		notesSpec,
		{Column: ColExpeditedShipping, Canonical: "Expedited Shipping", Contains: []string{"expedite", "rush"}},
	},
}

// OrdersSchema tabla Orders.
var OrdersSchema = Schema{
	Table: TableOrders,
	Columns: []ColumnSpec{
		{Column: ColOrderID, Canonical: "Order ID", Contains: []string{"order id", "order #", "order number"}},
		{Column: ColIncludedIDs, Canonical: "Included Request IDs", Contains: []string{"request id", "request"}},
		{Column: ColVendor, Canonical: "Vendor", Contains: []string{"vendor", "supplier"}},
		partNameSpec,
		skuSpec,
		{Column: ColQuantity, Canonical: "Qty Ordered", Contains: []string{"qty", "quantity"}},
		{Column: ColUnitPrice, Canonical: "Final Unit Price", Contains: []string{"unit price", "price"}, Exclude: []string{"total"}},
		{Column: ColTotalCost, Canonical: "Total Cost", Contains: []string{"total"}},
		{Column: ColOrderDate, Canonical: "Order Date", Contains: []string{"order date", "date ordered", "ordered on"}},
		{Column: ColShippingMethod, Canonical: "Shipping Method", Contains: []string{"shipping", "ship method"}},
		{Column: ColTracking, Canonical: "Tracking", Contains: []string{"tracking"}},
		{Column: ColETA, Canonical: "ETA", Contains: []string{"eta", "expected"}},
		{Column: ColReceivedDate, Canonical: "Received Date", Contains: []string{"received"}},
		{Column: ColStatus, Canonical: "Order Status", Exact: []string{"Status"}, Contains: []string{"status"}},
		notesSpec,
	},
}

// InventorySchema tabla Inventory; una fila por SKU y ubicación física.
var InventorySchema = Schema{
	Table: TableInventory,
	Columns: []ColumnSpec{
		skuSpec,
		{Column: ColVendor, Canonical: "Vendor", Contains: []string{"vendor", "supplier"}},
		partNameSpec,
		{Column: ColLocation, Canonical: "Location", Contains: []string{"location", "bin", "shelf"}},
		{Column: ColQuantity, Canonical: "Qty On-Hand", Contains: []string{"on hand", "qty", "quantity", "count"}},
		{Column: ColLastUpdated, Canonical: "Last Updated", Contains: []string{"updated", "modified"}},
	},
}

// UsersSchema tabla Users (revisores y clientes bot).
var UsersSchema = Schema{
	Table: TableUsers,
	Columns: []ColumnSpec{
		{Column: ColUsername, Canonical: "Username", Contains: []string{"username", "user", "login"}},
		{Column: ColPasswordHash, Canonical: "Password Hash", Contains: []string{"password", "hash"}},
		{Column: ColRole, Canonical: "Role", Contains: []string{"role"}},
		{Column: ColActive, Canonical: "Active", Contains: []string{"active", "enabled"}},
	},
}
