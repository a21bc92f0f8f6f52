// internal/service/delivery/domain/claim.go
package domain

import "time"

// Claim 是骑手对一笔在途订单的占位。
// 每个骑手同一时刻至多一条，这是由存储层主键硬性保证的排他不变量。
type Claim struct {
	CourierID string
	OrderID   string
	ClaimedAt time.Time
}
