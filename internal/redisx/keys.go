package redisx

import "time"

const (
	// Cart per session: cart:{session_id} -> JSON cart
	KeyCart = "cart:%s"

	// Login session: session:{session_id} -> hash {user_id, role, login_at}
	KeySession = "session:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Daily sales counters: sales:{DDMMYY} -> hash {orders, revenue_satang, items, cancelled}
	KeySalesDay = "sales:%s"

	// Daily product quantities: sales:{DDMMYY}:products -> zset member=product name
	KeySalesProducts = "sales:%s:products"
)

var (
	TTLCart    = 12 * time.Hour
	TTLSession = 12 * time.Hour
	TTLDedup   = 48 * time.Hour
	TTLSales   = 35 * 24 * time.Hour
)
